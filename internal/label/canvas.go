package label

import (
	"fmt"
	"math"
)

// TextStyle describes a run of text. Size is in CSS pixels on every surface.
type TextStyle struct {
	Size  float64
	Bold  bool
	Align string
	Color string
}

// Canvas is a drawing surface. Coordinates are in the surface's own unit
// (pixels for preview, millimetres for PDF); line widths and font sizes are
// CSS pixels and each surface converts them.
type Canvas interface {
	FillRect(x, y, w, h float64, color string)
	StrokeRect(x, y, w, h, lineWidth float64, color string)
	Line(x1, y1, x2, y2, lineWidth float64, color string)
	// Text draws text whose top edge is y. x is the left edge, centre or
	// right edge depending on style.Align.
	Text(x, y float64, text string, style TextStyle)
	BeginRotation(degrees, cx, cy float64)
	EndRotation()
}

// RenderFailure records an element that could not be drawn. The element is
// left as a placeholder and the batch continues.
type RenderFailure struct {
	Instance  int    `json:"instance"`
	ElementID string `json:"elementId"`
	Error     string `json:"error"`
}

const (
	placeholderColor = "#cccccc"
	valueFontSize    = 10.0
)

// Painter draws label instances element by element.
type Painter struct {
	Resolver *Resolver
	Scale    Scale
	Failures []RenderFailure
}

// NewPainter returns a painter producing surface units through scale.
func NewPainter(r *Resolver, scale Scale) *Painter {
	if r == nil {
		r = NewResolver()
	}
	if scale == nil {
		scale = PixelScale
	}
	return &Painter{Resolver: r, Scale: scale}
}

// PaintLabel draws the template background and border at (ox, oy), then each
// element in list order.
func (p *Painter) PaintLabel(c Canvas, t *Template, inst Instance, ox, oy float64) {
	w, h := p.Scale(t.Width), p.Scale(t.Height)
	c.FillRect(ox, oy, w, h, colorOr(t.BackgroundColor, "#ffffff"))
	if t.BorderWidth > 0 {
		c.StrokeRect(ox, oy, w, h, t.BorderWidth, colorOr(t.BorderColor, defaultStrokeColor))
	}
	for _, el := range t.Elements {
		p.paintElement(c, t, el, inst, ox, oy)
	}
}

func (p *Painter) paintElement(c Canvas, t *Template, el Element, inst Instance, ox, oy float64) {
	x := ox + p.Scale(el.Left(t.Width))
	y := oy + p.Scale(el.Y)
	w, h := p.Scale(el.Width), p.Scale(el.Height)
	if err := el.Validate(); err != nil {
		p.fail(inst, el, err)
		c.StrokeRect(x, y, max(w, 0), max(h, 0), 1, placeholderColor)
		return
	}

	rotated := el.Rotation != 0
	if rotated {
		c.BeginRotation(el.Rotation, x+w/2, y+h/2)
		defer c.EndRotation()
	}
	defer func() {
		if r := recover(); r != nil {
			p.fail(inst, el, fmt.Errorf("%v", r))
			c.StrokeRect(x, y, w, h, 1, placeholderColor)
		}
	}()

	switch el.Type {
	case ElementText:
		p.paintText(c, el, inst, x, y, w)
	case ElementBarcode:
		p.paintBarcode(c, el, inst, x, y, w, h)
	case ElementQRCode:
		p.paintQR(c, el, inst, x, y, w, h)
	case ElementLine:
		c.Line(x, y, x+w, y, el.lineWidth(), el.strokeColor())
	case ElementRectangle:
		if hasColor(el.BackgroundColor) {
			c.FillRect(x, y, w, h, el.BackgroundColor)
		}
		if el.BorderWidth > 0 {
			c.StrokeRect(x, y, w, h, el.BorderWidth, el.strokeColor())
		}
	}
}

func (p *Painter) paintText(c Canvas, el Element, inst Instance, x, y, w float64) {
	value := p.Resolver.Value(el, inst.Product)
	if value == "" {
		return
	}
	align := el.textAlign()
	anchor := x
	switch align {
	case "center":
		anchor = x + w/2
	case "right":
		anchor = x + w
	}
	c.Text(anchor, y, value, TextStyle{
		Size:  el.fontSize(),
		Bold:  el.bold(),
		Align: align,
		Color: defaultTextColor,
	})
}

// barcodeValue is the value a barcode element encodes.
func (p *Painter) barcodeValue(el Element, inst Instance) string {
	if v := p.Resolver.Value(el, inst.Product); v != "" {
		return v
	}
	return PlaceholderBarcode
}

func (p *Painter) paintBarcode(c Canvas, el Element, inst Instance, x, y, w, h float64) {
	value := p.barcodeValue(el, inst)
	modules, err := EncodeBarcode(ParseSymbology(el.BarcodeType), value)
	if err != nil {
		p.fail(inst, el, err)
		c.StrokeRect(x, y, w, h, 1, placeholderColor)
		return
	}

	barHeight := h
	if el.ShowValue {
		textHeight := math.Min(h*0.3, p.Scale(PixelsToMm(valueFontSize*1.2)))
		barHeight = h - textHeight
		c.Text(x+w/2, y+barHeight, value, TextStyle{Size: valueFontSize, Align: "center", Color: defaultTextColor})
	}
	moduleWidth := w / float64(len(modules))
	for _, run := range darkRuns(modules) {
		c.FillRect(x+float64(run[0])*moduleWidth, y, float64(run[1])*moduleWidth, barHeight, defaultStrokeColor)
	}
}

func (p *Painter) paintQR(c Canvas, el Element, inst Instance, x, y, w, h float64) {
	value := p.Resolver.Value(el, inst.Product)
	matrix, err := EncodeQR(value)
	if err != nil {
		p.fail(inst, el, err)
		c.StrokeRect(x, y, w, h, 1, placeholderColor)
		return
	}
	size := math.Min(w, h)
	module := size / float64(len(matrix))
	for row, line := range matrix {
		for _, run := range darkRuns(line) {
			c.FillRect(x+float64(run[0])*module, y+float64(row)*module, float64(run[1])*module, module, defaultStrokeColor)
		}
	}
}

func (p *Painter) fail(inst Instance, el Element, err error) {
	p.Failures = append(p.Failures, RenderFailure{Instance: inst.Index, ElementID: el.ID, Error: err.Error()})
}

// darkRuns returns [start, length] pairs of consecutive true modules.
func darkRuns(modules []bool) [][2]int {
	var runs [][2]int
	start := -1
	for i, dark := range modules {
		switch {
		case dark && start < 0:
			start = i
		case !dark && start >= 0:
			runs = append(runs, [2]int{start, i - start})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(modules) - start})
	}
	return runs
}
