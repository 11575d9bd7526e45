package label

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Paper is the physical page a print surface lays labels onto, in millimetres.
// A zero Width or Height means one label per page, sized to the template.
type Paper struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// pageFor returns the page size used for template t.
func (p Paper) pageFor(t *Template) (float64, float64) {
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		w = t.Width + 2*p.Margin
		h = t.Height + 2*p.Margin
	}
	return w, h
}

// PDFOptions configures the PDF surface.
type PDFOptions struct {
	Paper    Paper
	Resolver *Resolver
	// FontFile is a TrueType font with Unicode coverage. Without it the core
	// Arial font is used and text is limited to cp1252.
	FontFile string
}

const utf8Family = "labelfont"

// PDFCanvas draws onto a gofpdf document. Surface units are millimetres.
type PDFCanvas struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

// NewPDFCanvas draws with the core Arial font.
func NewPDFCanvas(pdf *gofpdf.Fpdf) *PDFCanvas {
	cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
	return &PDFCanvas{pdf: pdf, family: "Arial", tr: func(s string) string { return cp1252(latinText(s)) }}
}

// NewUTF8PDFCanvas registers fontFile for regular and bold text and draws
// strings untranslated.
func NewUTF8PDFCanvas(pdf *gofpdf.Fpdf, fontFile string) (*PDFCanvas, error) {
	font, err := os.ReadFile(fontFile)
	if err != nil {
		return nil, fmt.Errorf("pdf font: %w", err)
	}
	pdf.AddUTF8FontFromBytes(utf8Family, "", font)
	pdf.AddUTF8FontFromBytes(utf8Family, "B", font)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf font %s: %w", fontFile, err)
	}
	return &PDFCanvas{pdf: pdf, family: utf8Family, tr: func(s string) string { return s }}, nil
}

// latinSubstitutes spells out common symbols cp1252 cannot hold.
var latinSubstitutes = strings.NewReplacer("₹", "Rs.")

func latinText(s string) string {
	return latinSubstitutes.Replace(s)
}

func (c *PDFCanvas) FillRect(x, y, w, h float64, color string) {
	r, g, b := rgb(color)
	c.pdf.SetFillColor(r, g, b)
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *PDFCanvas) StrokeRect(x, y, w, h, lineWidth float64, color string) {
	r, g, b := rgb(color)
	c.pdf.SetDrawColor(r, g, b)
	c.pdf.SetLineWidth(PixelsToMm(lineWidth))
	c.pdf.Rect(x, y, w, h, "D")
}

func (c *PDFCanvas) Line(x1, y1, x2, y2, lineWidth float64, color string) {
	r, g, b := rgb(color)
	c.pdf.SetDrawColor(r, g, b)
	c.pdf.SetLineWidth(PixelsToMm(lineWidth))
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *PDFCanvas) Text(x, y float64, text string, style TextStyle) {
	fontStyle := ""
	if style.Bold {
		fontStyle = "B"
	}
	c.pdf.SetFont(c.family, fontStyle, PxToPt(style.Size))
	r, g, b := rgb(style.Color)
	c.pdf.SetTextColor(r, g, b)

	txt := c.tr(text)
	width := c.pdf.GetStringWidth(txt)
	switch style.Align {
	case "center":
		x -= width / 2
	case "right":
		x -= width
	}
	// gofpdf positions text by baseline; the ascent of Arial is about 0.8em.
	c.pdf.Text(x, y+PixelsToMm(style.Size)*0.8, txt)
}

func (c *PDFCanvas) BeginRotation(degrees, cx, cy float64) {
	c.pdf.TransformBegin()
	// gofpdf rotates counter-clockwise, CSS clockwise.
	c.pdf.TransformRotate(-degrees, cx, cy)
}

func (c *PDFCanvas) EndRotation() {
	c.pdf.TransformEnd()
}

// RenderPDF lays the instances out on pages of opts.Paper and writes a PDF document.
func RenderPDF(w io.Writer, t *Template, instances []Instance, opts PDFOptions) (RenderReport, error) {
	if err := t.ValidatePage(); err != nil {
		return RenderReport{}, err
	}
	paper := opts.Paper
	pageW, pageH := paper.pageFor(t)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	canvas := NewPDFCanvas(pdf)
	if opts.FontFile != "" {
		var err error
		if canvas, err = NewUTF8PDFCanvas(pdf, opts.FontFile); err != nil {
			return RenderReport{}, err
		}
	}

	grid := Grid{AvailableWidth: pageW, Margin: paper.Margin}
	perRow := grid.LabelsPerRow(t.Width)
	rowsPerPage := max(int(math.Floor((pageH-paper.Margin)/(t.Height+paper.Margin))), 1)
	perPage := perRow * rowsPerPage

	painter := NewPainter(opts.Resolver, MillimetreScale)
	for i, inst := range instances {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		pl := grid.Place(i%perPage, t.Width, t.Height)
		painter.PaintLabel(canvas, t, inst, pl.X, pl.Y)
	}
	if len(instances) == 0 {
		pdf.AddPage()
	}

	report := RenderReport{
		Labels:       len(instances),
		LabelsPerRow: perRow,
		Rows:         grid.Rows(len(instances), t.Width),
		Width:        pageW,
		Height:       pageH,
		Failures:     painter.Failures,
	}
	if err := pdf.Output(w); err != nil {
		return report, fmt.Errorf("write pdf: %w", err)
	}
	return report, nil
}
