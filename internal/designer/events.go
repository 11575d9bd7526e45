package designer

import (
	"errors"
	"fmt"

	"github.com/xelth-com/poslabel/internal/label"
)

// ErrUnknownEvent is returned by Apply for an unrecognized event type.
var ErrUnknownEvent = errors.New("unknown designer event")

// EventType names a designer interaction.
type EventType string

const (
	EventPointerDown  EventType = "pointerdown"
	EventPointerMove  EventType = "pointermove"
	EventPointerUp    EventType = "pointerup"
	EventPointerLeave EventType = "pointerleave"
	EventAdd          EventType = "add"
	EventSelect       EventType = "select"
	EventDeselect     EventType = "deselect"
	EventSave         EventType = "save"
	EventCancel       EventType = "cancel"
	EventDelete       EventType = "delete"
	EventTemplate     EventType = "template"
)

// Event is the wire form of one interaction sent by a designer client.
// Pointer coordinates are in pixels.
type Event struct {
	Type      EventType         `json:"type"`
	ElementID string            `json:"elementId,omitempty"`
	X         float64           `json:"x,omitempty"`
	Y         float64           `json:"y,omitempty"`
	Kind      label.ElementType `json:"kind,omitempty"`
	Open      bool              `json:"open,omitempty"`
	Element   *label.Element    `json:"element,omitempty"`
	Props     *TemplateProps    `json:"props,omitempty"`
}

// Apply dispatches ev to the matching session operation.
func (s *Session) Apply(ev Event) error {
	switch ev.Type {
	case EventPointerDown:
		return s.PointerDown(ev.ElementID, ev.X, ev.Y)
	case EventPointerMove:
		return s.PointerMove(ev.X, ev.Y)
	case EventPointerUp:
		s.PointerUp()
		return nil
	case EventPointerLeave:
		s.PointerLeave()
		return nil
	case EventAdd:
		_, err := s.AddElement(ev.Kind)
		return err
	case EventSelect:
		return s.Select(ev.ElementID, ev.Open)
	case EventDeselect:
		s.Deselect()
		return nil
	case EventSave:
		if ev.Element == nil {
			return fmt.Errorf("%w: save without element", ErrInvalidTransition)
		}
		return s.Save(*ev.Element)
	case EventCancel:
		return s.Cancel()
	case EventDelete:
		return s.Delete(ev.ElementID)
	case EventTemplate:
		if ev.Props == nil {
			return nil
		}
		return s.UpdateTemplate(*ev.Props)
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
}
