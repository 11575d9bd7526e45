package label

import (
	"math"

	"github.com/samber/lo"

	"github.com/xelth-com/poslabel/internal/models"
)

// PrintRequest asks for Copies labels of one product.
type PrintRequest struct {
	Product *models.Product
	Copies  int
}

// Instance is one label to lay out and paint.
type Instance struct {
	Index   int
	Copy    int
	Product *models.Product
}

// Expand flattens requests into label instances, product-major: every copy of
// a product precedes the next product. Requests with fewer than one copy yield
// nothing.
func Expand(requests []PrintRequest) []Instance {
	nested := lo.Map(requests, func(r PrintRequest, _ int) []Instance {
		return lo.Times(max(r.Copies, 0), func(c int) Instance {
			return Instance{Copy: c, Product: r.Product}
		})
	})
	out := lo.Flatten(nested)
	for i := range out {
		out[i].Index = i
	}
	return out
}

// Preview grid defaults, in pixels.
const (
	DefaultPreviewWidth  = 800.0
	DefaultPreviewMargin = 10.0
)

// Grid places equally sized labels left to right, wrapping into rows.
// All values are in the unit of the target surface.
type Grid struct {
	AvailableWidth float64
	Margin         float64
}

// Placement is the grid cell and origin assigned to one label instance.
type Placement struct {
	Index int
	Row   int
	Col   int
	X     float64
	Y     float64
}

// LabelsPerRow returns how many labels of the given width fit on a row, at least one.
func (g Grid) LabelsPerRow(labelWidth float64) int {
	if labelWidth+g.Margin <= 0 {
		return 1
	}
	n := int(math.Floor((g.AvailableWidth - g.Margin) / (labelWidth + g.Margin)))
	if n < 1 {
		return 1
	}
	return n
}

// Place returns the cell of instance i.
func (g Grid) Place(i int, labelWidth, labelHeight float64) Placement {
	perRow := g.LabelsPerRow(labelWidth)
	row, col := i/perRow, i%perRow
	return Placement{
		Index: i,
		Row:   row,
		Col:   col,
		X:     g.Margin + float64(col)*(labelWidth+g.Margin),
		Y:     g.Margin + float64(row)*(labelHeight+g.Margin),
	}
}

// Rows returns the number of rows n labels occupy.
func (g Grid) Rows(n int, labelWidth float64) int {
	if n <= 0 {
		return 0
	}
	perRow := g.LabelsPerRow(labelWidth)
	return (n + perRow - 1) / perRow
}

// CanvasHeight returns the surface height needed for n labels.
func (g Grid) CanvasHeight(n int, labelWidth, labelHeight float64) float64 {
	return float64(g.Rows(n, labelWidth))*(labelHeight+g.Margin) + g.Margin
}
