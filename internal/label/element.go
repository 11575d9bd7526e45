package label

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidElement is returned by Element.Validate.
var ErrInvalidElement = errors.New("invalid label element")

// ElementType is the kind of drawable unit placed on a label.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementBarcode   ElementType = "barcode"
	ElementQRCode    ElementType = "qrcode"
	ElementLine      ElementType = "line"
	ElementRectangle ElementType = "rectangle"
)

// Valid reports whether t is one of the supported element kinds.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementBarcode, ElementQRCode, ElementLine, ElementRectangle:
		return true
	}
	return false
}

const (
	defaultFontSize    = 12.0
	defaultFontWeight  = "normal"
	defaultTextAlign   = "left"
	defaultStrokeColor = "#000000"
	defaultTextColor   = "#000000"
)

// Element is one positioned, styled unit on a label.
//
// X is measured in millimetres from the label's horizontal centre to the left
// edge of the element box; Y is measured from the top edge of the label.
type Element struct {
	ID              string      `json:"id"`
	Type            ElementType `json:"type"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	Content         string      `json:"content"`
	FontSize        float64     `json:"fontSize,omitempty"`
	FontWeight      string      `json:"fontWeight,omitempty"`
	TextAlign       string      `json:"textAlign,omitempty"`
	Rotation        float64     `json:"rotation,omitempty"`
	BorderWidth     float64     `json:"borderWidth,omitempty"`
	BorderColor     string      `json:"borderColor,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	DataField       string      `json:"dataField,omitempty"`
	BarcodeType     string      `json:"barcodeType,omitempty"`
	ShowValue       bool        `json:"showValue,omitempty"`
}

// Validate checks the kind and size of e.
func (e Element) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidElement, e.Type)
	}
	if e.Width < 0 || e.Height < 0 {
		return fmt.Errorf("%w: negative size %gx%g", ErrInvalidElement, e.Width, e.Height)
	}
	return nil
}

// NewElement returns an element of the given kind with the designer defaults:
// text is 30x8mm reading "New Text", every other kind is 20x20mm and empty.
func NewElement(kind ElementType) Element {
	el := Element{
		ID:   uuid.NewString(),
		Type: kind,
		Y:    5,
	}
	switch kind {
	case ElementText:
		el.Width, el.Height = 30, 8
		el.Content = "New Text"
		el.FontSize = defaultFontSize
		el.FontWeight = defaultFontWeight
		el.TextAlign = defaultTextAlign
	case ElementBarcode:
		el.Width, el.Height = 20, 20
		el.BarcodeType = string(SymbologyCode128)
		el.ShowValue = true
	case ElementLine:
		el.Width, el.Height = 20, 20
		el.BorderWidth = 1
		el.BorderColor = defaultStrokeColor
	default:
		el.Width, el.Height = 20, 20
	}
	el.X = -el.Width / 2
	return el
}

// Left returns the distance in millimetres from the label's left edge to the element box.
func (e Element) Left(labelWidth float64) float64 {
	return labelWidth/2 + e.X
}

func (e Element) fontSize() float64 {
	if e.FontSize > 0 {
		return e.FontSize
	}
	return defaultFontSize
}

func (e Element) fontWeight() string {
	if e.FontWeight == "" {
		return defaultFontWeight
	}
	return e.FontWeight
}

func (e Element) textAlign() string {
	switch e.TextAlign {
	case "center", "right":
		return e.TextAlign
	}
	return defaultTextAlign
}

func (e Element) strokeColor() string {
	return colorOr(e.BorderColor, defaultStrokeColor)
}

// lineWidth is the stroke width of a line element in pixels; lines default to 1px.
func (e Element) lineWidth() float64 {
	if e.BorderWidth > 0 {
		return e.BorderWidth
	}
	return 1
}

func (e Element) bold() bool {
	switch e.fontWeight() {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}
