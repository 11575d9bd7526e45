package label

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// TempIDPrefix marks a template that has never been persisted. The store
// replaces such ids with a durable one on first save.
const TempIDPrefix = "temp_"

// ErrInvalidTemplate is returned by Validate.
var ErrInvalidTemplate = errors.New("invalid label template")

// Template is a reusable label design: page geometry plus an ordered list of
// elements. Element order is paint order.
type Template struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Width           float64    `json:"width"`
	Height          float64    `json:"height"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderWidth     float64    `json:"borderWidth"`
	BorderColor     string     `json:"borderColor"`
	Elements        []Element  `json:"elements"`
	IsDefault       bool       `json:"isDefault,omitempty"`
	IsActive        bool       `json:"isActive,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// NewTemporaryID returns an id that marks a template as not yet saved.
func NewTemporaryID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTemporaryID reports whether id still needs a durable replacement.
func IsTemporaryID(id string) bool {
	return id == "" || strings.HasPrefix(id, TempIDPrefix)
}

// Validate checks the page geometry and every element of t. Import and save
// go through it; rendering only needs ValidatePage.
func (t *Template) Validate() error {
	if err := t.ValidatePage(); err != nil {
		return err
	}
	for i, el := range t.Elements {
		if err := el.Validate(); err != nil {
			return fmt.Errorf("%w: element %d: %w", ErrInvalidTemplate, i, err)
		}
	}
	return nil
}

// ValidatePage checks that t has a drawable page.
func (t *Template) ValidatePage() error {
	if t == nil {
		return fmt.Errorf("%w: nil template", ErrInvalidTemplate)
	}
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive (got %gx%g)", ErrInvalidTemplate, t.Width, t.Height)
	}
	return nil
}

// Clone returns a deep copy of t so callers can mutate it freely.
func (t *Template) Clone() *Template {
	c := *t
	c.Elements = append([]Element(nil), t.Elements...)
	if t.CreatedAt != nil {
		ts := *t.CreatedAt
		c.CreatedAt = &ts
	}
	if t.UpdatedAt != nil {
		ts := *t.UpdatedAt
		c.UpdatedAt = &ts
	}
	return &c
}

// ElementIndex returns the position of the element with the given id, or -1.
func (t *Template) ElementIndex(id string) int {
	_, idx, ok := lo.FindIndexOf(t.Elements, func(el Element) bool { return el.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Element returns the element with the given id.
func (t *Template) Element(id string) (Element, bool) {
	return lo.Find(t.Elements, func(el Element) bool { return el.ID == id })
}

// ReplaceElement swaps in el for the element sharing its id.
func (t *Template) ReplaceElement(el Element) bool {
	idx := t.ElementIndex(el.ID)
	if idx < 0 {
		return false
	}
	t.Elements[idx] = el
	return true
}

// RemoveElement drops the element with the given id.
func (t *Template) RemoveElement(id string) bool {
	idx := t.ElementIndex(id)
	if idx < 0 {
		return false
	}
	t.Elements = append(t.Elements[:idx], t.Elements[idx+1:]...)
	return true
}

// Built-in template ids.
const (
	DefaultTemplateID = "default-mmart-standard"
	CompactTemplateID = "default-compact-price"
	ShelfQRTemplateID = "default-shelf-qr"
)

// DefaultTemplates returns the templates seeded into an empty store.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:              DefaultTemplateID,
			Name:            "M MART Standard",
			Width:           80,
			Height:          40,
			BackgroundColor: "#ffffff",
			BorderWidth:     1,
			BorderColor:     "#000000",
			IsDefault:       true,
			IsActive:        true,
			Elements: []Element{
				{ID: "store", Type: ElementText, X: -38, Y: 1, Width: 76, Height: 5, DataField: "storeName", Content: "M MART", FontSize: 12, FontWeight: "bold", TextAlign: "center"},
				{ID: "name", Type: ElementText, X: -38, Y: 7, Width: 76, Height: 5, DataField: "name", FontSize: 11, TextAlign: "center"},
				{ID: "price", Type: ElementText, X: -38, Y: 13, Width: 36, Height: 6, DataField: "price", FontSize: 14, FontWeight: "bold", TextAlign: "left"},
				{ID: "mrp", Type: ElementText, X: 2, Y: 13, Width: 36, Height: 6, DataField: "mrp", FontSize: 11, TextAlign: "right"},
				{ID: "divider", Type: ElementLine, X: -38, Y: 20, Width: 76, Height: 0, BorderWidth: 1, BorderColor: "#000000"},
				{ID: "barcode", Type: ElementBarcode, X: -30, Y: 22, Width: 60, Height: 16, DataField: "barcode", BarcodeType: string(SymbologyCode128), ShowValue: true},
			},
		},
		{
			ID:              CompactTemplateID,
			Name:            "Compact Price Tag",
			Width:           50,
			Height:          25,
			BackgroundColor: "#ffffff",
			IsActive:        true,
			Elements: []Element{
				{ID: "name", Type: ElementText, X: -24, Y: 1, Width: 48, Height: 5, DataField: "name", FontSize: 10, TextAlign: "center"},
				{ID: "price", Type: ElementText, X: -24, Y: 6, Width: 48, Height: 6, DataField: "price", FontSize: 14, FontWeight: "bold", TextAlign: "center"},
				{ID: "barcode", Type: ElementBarcode, X: -22, Y: 13, Width: 44, Height: 11, DataField: "barcode", BarcodeType: string(SymbologyCode128)},
			},
		},
		{
			ID:              ShelfQRTemplateID,
			Name:            "Shelf QR",
			Width:           60,
			Height:          40,
			BackgroundColor: "#ffffff",
			BorderWidth:     1,
			BorderColor:     "#333333",
			IsActive:        true,
			Elements: []Element{
				{ID: "frame", Type: ElementRectangle, X: -29, Y: 1, Width: 58, Height: 38, BorderWidth: 1, BorderColor: "#333333"},
				{ID: "qr", Type: ElementQRCode, X: -27, Y: 4, Width: 26, Height: 26, DataField: "sku"},
				{ID: "name", Type: ElementText, X: 1, Y: 5, Width: 26, Height: 6, DataField: "name", FontSize: 10, FontWeight: "bold"},
				{ID: "price", Type: ElementText, X: 1, Y: 13, Width: 26, Height: 6, DataField: "price", FontSize: 13, FontWeight: "bold"},
				{ID: "stock", Type: ElementText, X: 1, Y: 21, Width: 26, Height: 5, DataField: "stockQuantity", FontSize: 9},
				{ID: "date", Type: ElementText, X: -27, Y: 32, Width: 54, Height: 5, DataField: "date", FontSize: 8, TextAlign: "center"},
			},
		},
	}
}
