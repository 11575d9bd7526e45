package label

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
)

// PrintOptions configures the print document.
type PrintOptions struct {
	Paper    Paper
	Title    string
	Resolver *Resolver
	// AutoPrint adds the script that prints the document on load and closes the window.
	AutoPrint bool
}

type htmlElement struct {
	Class string
	Style template.CSS
	Text  string
	SVG   template.HTML
	Value string
	// BarsHeight is the share of the element the bars take when a value line is shown.
	BarsHeight template.CSS
}

type htmlLabel struct {
	Style    template.CSS
	Elements []htmlElement
}

type htmlDocument struct {
	Title      string
	PageWidth  template.CSS
	PageHeight template.CSS
	Margin     template.CSS
	Gap        template.CSS
	AutoPrint  bool
	Labels     []htmlLabel
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: {{.PageWidth}} {{.PageHeight}}; margin: {{.Margin}}; }
body { margin: 0; font-family: Arial, sans-serif; }
.label { display: inline-block; position: relative; overflow: hidden; box-sizing: border-box; vertical-align: top; margin: 0 {{.Gap}} {{.Gap}} 0; page-break-inside: avoid; break-inside: avoid; }
.el { position: absolute; box-sizing: border-box; }
.el svg { display: block; width: 100%; height: 100%; }
.text { white-space: nowrap; overflow: hidden; line-height: 1.1; }
.bars { width: 100%; }
.value { font-size: 10px; line-height: 1; text-align: center; white-space: nowrap; }
</style>
</head>
<body>
{{range .Labels}}<div class="label" style="{{.Style}}">{{range .Elements}}<div class="el {{.Class}}" style="{{.Style}}">{{if eq .Class "barcode"}}<div class="bars" style="{{.BarsHeight}}">{{.SVG}}</div>{{if .Value}}<div class="value">{{.Value}}</div>{{end}}{{else if .SVG}}{{.SVG}}{{else}}{{.Text}}{{end}}</div>{{end}}</div>
{{end}}{{if .AutoPrint}}<script>
window.addEventListener('load', function () {
  if (typeof window.print !== 'function') {
    alert('Printing is not available in this browser.');
    return;
  }
  window.print();
  setTimeout(function () { window.close(); }, 500);
});
</script>
{{end}}</body>
</html>
`))

// RenderPrintHTML writes a print-ready HTML document with one block per label
// instance. Geometry is emitted in millimetres; the browser's inline flow does
// the row wrapping.
func RenderPrintHTML(w io.Writer, t *Template, instances []Instance, opts PrintOptions) (RenderReport, error) {
	if err := t.ValidatePage(); err != nil {
		return RenderReport{}, err
	}
	pageW, pageH := opts.Paper.pageFor(t)
	title := opts.Title
	if title == "" {
		title = t.Name + " labels"
	}

	painter := NewPainter(opts.Resolver, MillimetreScale)
	doc := htmlDocument{
		Title:      title,
		PageWidth:  mm(pageW),
		PageHeight: mm(pageH),
		Margin:     mm(opts.Paper.Margin),
		Gap:        mm(opts.Paper.Margin),
		AutoPrint:  opts.AutoPrint,
		Labels:     make([]htmlLabel, 0, len(instances)),
	}
	for _, inst := range instances {
		doc.Labels = append(doc.Labels, htmlLabelFor(painter, t, inst))
	}

	if err := printTemplate.Execute(w, doc); err != nil {
		return RenderReport{}, fmt.Errorf("render print document: %w", err)
	}
	grid := Grid{AvailableWidth: pageW, Margin: opts.Paper.Margin}
	return RenderReport{
		Labels:       len(instances),
		LabelsPerRow: grid.LabelsPerRow(t.Width),
		Rows:         grid.Rows(len(instances), t.Width),
		Width:        pageW,
		Height:       pageH,
		Failures:     painter.Failures,
	}, nil
}

func htmlLabelFor(p *Painter, t *Template, inst Instance) htmlLabel {
	var box strings.Builder
	fmt.Fprintf(&box, "width:%s;height:%s;background-color:%s;", mm(t.Width), mm(t.Height), colorOr(t.BackgroundColor, "#ffffff"))
	if t.BorderWidth > 0 {
		fmt.Fprintf(&box, "border:%gpx solid %s;", t.BorderWidth, colorOr(t.BorderColor, defaultStrokeColor))
	}
	lbl := htmlLabel{Style: template.CSS(box.String())}
	for _, el := range t.Elements {
		lbl.Elements = append(lbl.Elements, htmlElementFor(p, t, el, inst))
	}
	return lbl
}

func htmlElementFor(p *Painter, t *Template, el Element, inst Instance) htmlElement {
	var st strings.Builder
	if err := el.Validate(); err != nil {
		p.fail(inst, el, err)
		fmt.Fprintf(&st, "left:%s;top:%s;width:%s;height:%s;border:1px dashed %s;",
			mm(el.Left(t.Width)), mm(el.Y), mm(max(el.Width, 0)), mm(max(el.Height, 0)), placeholderColor)
		return htmlElement{Class: "placeholder", Style: template.CSS(st.String())}
	}
	fmt.Fprintf(&st, "left:%s;top:%s;width:%s;", mm(el.Left(t.Width)), mm(el.Y), mm(el.Width))
	if el.Type != ElementLine {
		fmt.Fprintf(&st, "height:%s;", mm(el.Height))
	}
	if el.Rotation != 0 {
		fmt.Fprintf(&st, "transform:rotate(%gdeg);transform-origin:center center;", el.Rotation)
	}

	out := htmlElement{Class: string(el.Type)}
	switch el.Type {
	case ElementText:
		fmt.Fprintf(&st, "font-size:%gpx;font-weight:%s;text-align:%s;", el.fontSize(), cssWeight(el), el.textAlign())
		out.Text = p.Resolver.Value(el, inst.Product)
	case ElementBarcode:
		value := p.barcodeValue(el, inst)
		modules, err := EncodeBarcode(ParseSymbology(el.BarcodeType), value)
		if err != nil {
			p.fail(inst, el, err)
			out.Class = "placeholder"
			fmt.Fprintf(&st, "border:1px dashed %s;", placeholderColor)
			break
		}
		barsHeight := el.Height
		if el.ShowValue {
			barsHeight = el.Height - math.Min(el.Height*0.3, PixelsToMm(valueFontSize*1.2))
			out.Value = value
		}
		out.BarsHeight = template.CSS("height:" + string(mm(barsHeight)) + ";")
		out.SVG = modulesHTML([][]bool{modules}, el.Width, barsHeight)
	case ElementQRCode:
		matrix, err := EncodeQR(p.Resolver.Value(el, inst.Product))
		if err != nil {
			p.fail(inst, el, err)
			out.Class = "placeholder"
			fmt.Fprintf(&st, "border:1px dashed %s;", placeholderColor)
			break
		}
		size := math.Min(el.Width, el.Height)
		fmt.Fprintf(&st, "width:%s;height:%s;", mm(size), mm(size))
		out.SVG = modulesHTML(matrix, size, size)
	case ElementLine:
		fmt.Fprintf(&st, "height:0;border-top:%gpx solid %s;", el.lineWidth(), el.strokeColor())
	case ElementRectangle:
		if hasColor(el.BackgroundColor) {
			fmt.Fprintf(&st, "background-color:%s;", el.BackgroundColor)
		}
		if el.BorderWidth > 0 {
			fmt.Fprintf(&st, "border:%gpx solid %s;", el.BorderWidth, el.strokeColor())
		}
	}
	out.Style = template.CSS(st.String())
	return out
}

func modulesHTML(rows [][]bool, width, height float64) template.HTML {
	var buf bytes.Buffer
	WriteModulesSVG(&buf, rows, width, height)
	return template.HTML(stripXMLHeader(buf.String()))
}

// stripXMLHeader drops the XML declaration svgo writes, which is not valid inside HTML.
func stripXMLHeader(s string) string {
	if strings.HasPrefix(s, "<?xml") {
		if i := strings.Index(s, "?>"); i >= 0 {
			s = strings.TrimLeft(s[i+2:], "\n")
		}
	}
	return s
}

func cssWeight(el Element) string {
	if el.bold() {
		return "bold"
	}
	return "normal"
}

func mm(v float64) template.CSS {
	return template.CSS(fmt.Sprintf("%.2fmm", v))
}
