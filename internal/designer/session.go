package designer

import (
	"errors"
	"fmt"

	"github.com/xelth-com/poslabel/internal/label"
)

var (
	// ErrInvalidTransition is returned for an action the current state does not allow.
	ErrInvalidTransition = errors.New("action not allowed in current designer state")
	// ErrUnknownElement is returned when an action names an element the template lacks.
	ErrUnknownElement = errors.New("unknown element")
)

// TemplateProps are the template-level properties editable in the designer.
// Nil fields are left unchanged.
type TemplateProps struct {
	Name            *string  `json:"name,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	BorderWidth     *float64 `json:"borderWidth,omitempty"`
	BorderColor     *string  `json:"borderColor,omitempty"`
}

// Session is the interaction state of one template being designed. It mutates
// its template in place and calls OnChange after every committing transition.
type Session struct {
	ID       string
	Template *label.Template
	OnChange func(*label.Template)

	state State
	dirty bool
}

// NewSession starts an idle session on t.
func NewSession(t *label.Template, onChange func(*label.Template)) *Session {
	return &Session{Template: t, OnChange: onChange, state: Idle{}}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// SelectedID returns the highlighted element id, or "".
func (s *Session) SelectedID() string { return selectedID(s.state) }

// Dirty reports whether the template changed since the last MarkSaved.
func (s *Session) Dirty() bool { return s.dirty }

// MarkSaved clears the dirty flag after the template was persisted.
func (s *Session) MarkSaved() { s.dirty = false }

func (s *Session) changed() {
	s.dirty = true
	if s.OnChange != nil {
		s.OnChange(s.Template)
	}
}

func (s *Session) idleOrSelected() bool {
	switch s.state.(type) {
	case Idle, Selected:
		return true
	}
	return false
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, s.state.Mode())
}

// PointerDown grabs an element at pointer position (px, py).
func (s *Session) PointerDown(elementID string, px, py float64) error {
	if !s.idleOrSelected() {
		return s.invalid("pointer down")
	}
	el, ok := s.Template.Element(elementID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElement, elementID)
	}
	s.state = Dragging{ElementID: elementID, StartX: px, StartY: py, OriginX: el.X, OriginY: el.Y}
	return nil
}

// PointerMove repositions the dragged element. The element ends up at its
// pre-drag position plus the pointer displacement converted to millimetres.
// Moves outside a drag are ignored.
func (s *Session) PointerMove(px, py float64) error {
	d, ok := s.state.(Dragging)
	if !ok {
		return nil
	}
	idx := s.Template.ElementIndex(d.ElementID)
	if idx < 0 {
		s.state = Idle{}
		return fmt.Errorf("%w: %s", ErrUnknownElement, d.ElementID)
	}
	s.Template.Elements[idx].X = d.OriginX + label.PixelsToMm(px-d.StartX)
	s.Template.Elements[idx].Y = d.OriginY + label.PixelsToMm(py-d.StartY)
	s.changed()
	return nil
}

// PointerUp ends a drag.
func (s *Session) PointerUp() {
	if _, ok := s.state.(Dragging); ok {
		s.state = Idle{}
	}
}

// PointerLeave ends a drag when the pointer leaves the design surface.
func (s *Session) PointerLeave() {
	s.PointerUp()
}

// AddElement appends a new element of the given kind and opens it for editing.
func (s *Session) AddElement(kind label.ElementType) (label.Element, error) {
	if !s.idleOrSelected() {
		return label.Element{}, s.invalid("add element")
	}
	if !kind.Valid() {
		return label.Element{}, fmt.Errorf("%w: unknown element type %q", ErrInvalidTransition, kind)
	}
	el := label.NewElement(kind)
	s.Template.Elements = append(s.Template.Elements, el)
	s.state = Editing{Draft: el, IsNew: true}
	s.changed()
	return el, nil
}

// Select highlights an element, opening its editor when open is set.
func (s *Session) Select(elementID string, open bool) error {
	if !s.idleOrSelected() {
		return s.invalid("select")
	}
	el, ok := s.Template.Element(elementID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElement, elementID)
	}
	if open {
		s.state = Editing{Draft: el}
	} else {
		s.state = Selected{ElementID: elementID}
	}
	return nil
}

// Deselect returns to Idle from Selected.
func (s *Session) Deselect() {
	if _, ok := s.state.(Selected); ok {
		s.state = Idle{}
	}
}

// Save commits the edited copy back into the template by id. A draft that
// fails element validation leaves the session in Editing with the template
// untouched.
func (s *Session) Save(draft label.Element) error {
	ed, ok := s.state.(Editing)
	if !ok {
		return s.invalid("save")
	}
	draft.ID = ed.Draft.ID
	if draft.Type == "" {
		draft.Type = ed.Draft.Type
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	if !s.Template.ReplaceElement(draft) {
		s.Template.Elements = append(s.Template.Elements, draft)
	}
	s.state = Idle{}
	s.changed()
	return nil
}

// Cancel discards the edited copy.
func (s *Session) Cancel() error {
	if _, ok := s.state.(Editing); !ok {
		return s.invalid("cancel")
	}
	s.state = Idle{}
	return nil
}

// Delete removes an element and clears the selection.
func (s *Session) Delete(elementID string) error {
	if !s.idleOrSelected() {
		return s.invalid("delete")
	}
	if !s.Template.RemoveElement(elementID) {
		return fmt.Errorf("%w: %s", ErrUnknownElement, elementID)
	}
	s.state = Idle{}
	s.changed()
	return nil
}

// UpdateTemplate applies template-level property edits.
func (s *Session) UpdateTemplate(p TemplateProps) error {
	if !s.idleOrSelected() {
		return s.invalid("update template")
	}
	next := *s.Template
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Width != nil {
		next.Width = *p.Width
	}
	if p.Height != nil {
		next.Height = *p.Height
	}
	if p.BackgroundColor != nil {
		next.BackgroundColor = *p.BackgroundColor
	}
	if p.BorderWidth != nil {
		next.BorderWidth = *p.BorderWidth
	}
	if p.BorderColor != nil {
		next.BorderColor = *p.BorderColor
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s.Template = next
	s.changed()
	return nil
}
