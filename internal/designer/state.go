package designer

import "github.com/xelth-com/poslabel/internal/label"

// Mode names a designer state.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeSelected Mode = "selected"
	ModeDragging Mode = "dragging"
	ModeEditing  Mode = "editing"
)

// State is one of Idle, Selected, Dragging or Editing. Each carries only what
// that state needs, so dragging while editing cannot be represented.
type State interface {
	Mode() Mode
}

// Idle has nothing selected.
type Idle struct{}

// Selected highlights an element without opening its editor.
type Selected struct {
	ElementID string `json:"elementId"`
}

// Dragging moves an element with the pointer. Start is the pointer position
// in pixels at pointer-down; Origin is the element position in millimetres.
type Dragging struct {
	ElementID string  `json:"elementId"`
	StartX    float64 `json:"startX"`
	StartY    float64 `json:"startY"`
	OriginX   float64 `json:"originX"`
	OriginY   float64 `json:"originY"`
}

// Editing holds the copy of an element open in the property editor.
type Editing struct {
	Draft label.Element `json:"draft"`
	IsNew bool          `json:"isNew"`
}

func (Idle) Mode() Mode     { return ModeIdle }
func (Selected) Mode() Mode { return ModeSelected }
func (Dragging) Mode() Mode { return ModeDragging }
func (Editing) Mode() Mode  { return ModeEditing }

// selectedID returns the element highlighted by st, if any.
func selectedID(st State) string {
	switch s := st.(type) {
	case Selected:
		return s.ElementID
	case Dragging:
		return s.ElementID
	case Editing:
		return s.Draft.ID
	}
	return ""
}
