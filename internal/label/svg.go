package label

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// svgResolution is the number of SVG user units per surface unit. svgo works
// in integers, so geometry is drawn at a finer grid and mapped back with a viewBox.
const svgResolution = 10

// SVGCanvas draws onto an SVG document. Surface units are pixels.
type SVGCanvas struct {
	doc *svg.SVG
}

// NewSVGCanvas starts an SVG document of the given pixel size on w.
func NewSVGCanvas(w io.Writer, width, height float64) *SVGCanvas {
	doc := svg.New(w)
	wi, hi := int(math.Ceil(width)), int(math.Ceil(height))
	doc.Startview(wi, hi, 0, 0, wi*svgResolution, hi*svgResolution)
	return &SVGCanvas{doc: doc}
}

// Close finishes the document.
func (c *SVGCanvas) Close() {
	c.doc.End()
}

func u(v float64) int {
	return int(math.Round(v * svgResolution))
}

func (c *SVGCanvas) FillRect(x, y, w, h float64, color string) {
	c.doc.Rect(u(x), u(y), u(w), u(h), "fill:"+colorOr(color, "#000000"))
}

func (c *SVGCanvas) StrokeRect(x, y, w, h, lineWidth float64, color string) {
	c.doc.Rect(u(x), u(y), u(w), u(h),
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d", colorOr(color, defaultStrokeColor), u(lineWidth)))
}

func (c *SVGCanvas) Line(x1, y1, x2, y2, lineWidth float64, color string) {
	c.doc.Line(u(x1), u(y1), u(x2), u(y2),
		fmt.Sprintf("stroke:%s;stroke-width:%d", colorOr(color, defaultStrokeColor), u(lineWidth)))
}

func (c *SVGCanvas) Text(x, y float64, text string, style TextStyle) {
	c.doc.Text(u(x), u(y), text, svgTextStyle(style, u(style.Size)))
}

func (c *SVGCanvas) BeginRotation(degrees, cx, cy float64) {
	c.doc.Gtransform(fmt.Sprintf("rotate(%g %d %d)", degrees, u(cx), u(cy)))
}

func (c *SVGCanvas) EndRotation() {
	c.doc.Gend()
}

func svgTextStyle(style TextStyle, size int) string {
	anchor := "start"
	switch style.Align {
	case "center":
		anchor = "middle"
	case "right":
		anchor = "end"
	}
	weight := "normal"
	if style.Bold {
		weight = "bold"
	}
	return fmt.Sprintf("font-family:Arial,sans-serif;font-size:%dpx;font-weight:%s;text-anchor:%s;dominant-baseline:hanging;fill:%s",
		size, weight, anchor, colorOr(style.Color, defaultTextColor))
}

// PreviewOptions configures the on-screen preview grid. Zero values take the defaults.
type PreviewOptions struct {
	Width    float64
	Margin   float64
	Resolver *Resolver
}

// RenderReport summarizes a render pass.
type RenderReport struct {
	Labels       int             `json:"labels"`
	LabelsPerRow int             `json:"labelsPerRow"`
	Rows         int             `json:"rows"`
	Width        float64         `json:"width"`
	Height       float64         `json:"height"`
	Failures     []RenderFailure `json:"failures,omitempty"`
}

// RenderPreview lays the instances out on a pixel grid and writes the result
// as an SVG document.
func RenderPreview(w io.Writer, t *Template, instances []Instance, opts PreviewOptions) (RenderReport, error) {
	if err := t.ValidatePage(); err != nil {
		return RenderReport{}, err
	}
	grid := Grid{AvailableWidth: opts.Width, Margin: opts.Margin}
	if grid.AvailableWidth <= 0 {
		grid.AvailableWidth = DefaultPreviewWidth
	}
	if grid.Margin <= 0 {
		grid.Margin = DefaultPreviewMargin
	}

	labelW, labelH := MmToPixels(t.Width), MmToPixels(t.Height)
	report := RenderReport{
		Labels:       len(instances),
		LabelsPerRow: grid.LabelsPerRow(labelW),
		Rows:         grid.Rows(len(instances), labelW),
		Width:        math.Max(grid.AvailableWidth, labelW+2*grid.Margin),
		Height:       grid.CanvasHeight(len(instances), labelW, labelH),
	}

	canvas := NewSVGCanvas(w, report.Width, report.Height)
	canvas.FillRect(0, 0, report.Width, report.Height, "#ffffff")
	painter := NewPainter(opts.Resolver, PixelScale)
	for i, inst := range instances {
		pl := grid.Place(i, labelW, labelH)
		painter.PaintLabel(canvas, t, inst, pl.X, pl.Y)
	}
	canvas.Close()

	report.Failures = painter.Failures
	return report, nil
}

// WriteModulesSVG writes a standalone SVG of a module matrix stretched over
// width x height. Barcodes pass a single row, QR codes the full matrix.
func WriteModulesSVG(w io.Writer, rows [][]bool, width, height float64) {
	wi, hi := max(int(math.Ceil(width)), 1), max(int(math.Ceil(height)), 1)
	doc := svg.New(w)
	doc.Startview(wi, hi, 0, 0, u(width), u(height))
	if len(rows) > 0 {
		rowHeight := height / float64(len(rows))
		for r, row := range rows {
			if len(row) == 0 {
				continue
			}
			module := width / float64(len(row))
			for _, run := range darkRuns(row) {
				doc.Rect(u(float64(run[0])*module), u(float64(r)*rowHeight), u(float64(run[1])*module), u(rowHeight), "fill:#000000")
			}
		}
	}
	doc.End()
}
