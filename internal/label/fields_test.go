package label

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xelth-com/poslabel/internal/models"
)

func money2(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func fixedResolver() *Resolver {
	r := NewResolver()
	r.Now = func() time.Time { return time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC) }
	return r
}

func chocoBar() *models.Product {
	return &models.Product{
		Name:    "Choco Bar",
		SKU:     "CB1",
		Price:   money2("36.00"),
		MRP:     money2("48.00"),
		Barcode: "8901234",
	}
}

func TestResolveNeverFails(t *testing.T) {
	r := fixedResolver()
	products := []*models.Product{nil, {}, chocoBar()}
	fields := append(Fields(), "", "Price", "unknownField", "NAME")
	for _, p := range products {
		for _, f := range fields {
			assert.NotPanics(t, func() { _ = r.Resolve(p, f) }, "field %q", f)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	r := fixedResolver()
	empty := &models.Product{}

	tests := []struct {
		field string
		want  string
	}{
		{"name", ""},
		{"sku", "SKU: "},
		{"barcode", PlaceholderBarcode},
		{"price", "0.00"},
		{"mrp", "0.00"},
		{"cost", "0.00"},
		{"weight", ""},
		{"hsnCode", ""},
		{"gstCode", ""},
		{"category", ""},
		{"stockQuantity", "Stock: 0"},
		{"brand", ""},
		{"model", ""},
		{"size", ""},
		{"storeName", DefaultStoreName},
		{"storeAddress", DefaultStoreAddress},
		{"date", "09/03/2026"},
		{"time", "2:05:07 PM"},
		{"notAField", ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(empty, tt.field))
		})
	}
}

func TestResolveProductValues(t *testing.T) {
	r := fixedResolver()
	p := &models.Product{
		Name:          "Basmati Rice",
		SKU:           "RICE-5",
		Price:         money2("499.5"),
		Cost:          money2("410"),
		Weight:        money2("500"),
		HSNCode:       "1006",
		GSTCode:       "GST5",
		Category:      "Grains",
		StockQuantity: 42,
		Brand:         "Daawat",
		Model:         "Classic",
		Size:          "5kg",
	}

	assert.Equal(t, "Basmati Rice", r.Resolve(p, "name"))
	assert.Equal(t, "SKU: RICE-5", r.Resolve(p, "sku"))
	assert.Equal(t, "RICE-5", r.Resolve(p, "barcode"), "barcode falls back to sku")
	assert.Equal(t, "499.50", r.Resolve(p, "price"))
	assert.Equal(t, "499.50", r.Resolve(p, "mrp"), "mrp falls back to price")
	assert.Equal(t, "410.00", r.Resolve(p, "cost"))
	assert.Equal(t, "500 g", r.Resolve(p, "weight"))
	assert.Equal(t, "1006", r.Resolve(p, "hsnCode"))
	assert.Equal(t, "GST5", r.Resolve(p, "gstCode"))
	assert.Equal(t, "Grains", r.Resolve(p, "category"))
	assert.Equal(t, "Stock: 42", r.Resolve(p, "stockQuantity"))
	assert.Equal(t, "Daawat", r.Resolve(p, "brand"))
	assert.Equal(t, "Classic", r.Resolve(p, "model"))
	assert.Equal(t, "5kg", r.Resolve(p, "size"))

	p.WeightUnit = "kg"
	p.Weight = money2("1.25")
	assert.Equal(t, "1.25 kg", r.Resolve(p, "weight"))
}

func TestResolveMissingMRPFallsBackToPrice(t *testing.T) {
	p := &models.Product{Name: "Soap", Price: money2("50.00")}
	assert.Equal(t, "50.00", fixedResolver().Resolve(p, "mrp"))
}

func TestResolveStoreOverride(t *testing.T) {
	r := fixedResolver()
	r.Store = StoreInfo{Name: "Corner Shop", Address: "12 Market St"}
	assert.Equal(t, "Corner Shop", r.Resolve(nil, "storeName"))
	assert.Equal(t, "12 Market St", r.Resolve(nil, "storeAddress"))
}

func TestValuePrefersDataField(t *testing.T) {
	r := fixedResolver()
	p := chocoBar()

	bound := Element{Type: ElementText, Content: "literal", DataField: "price"}
	assert.Equal(t, "36.00", r.Value(bound, p))

	literal := Element{Type: ElementText, Content: "literal"}
	assert.Equal(t, "literal", r.Value(literal, p))

	unknown := Element{Type: ElementText, DataField: "colour"}
	assert.Equal(t, "", r.Value(unknown, p), "unknown field resolves to empty, not an error")

	unresolved := Element{Type: ElementText, Content: "fallback", DataField: "brand"}
	assert.Equal(t, "fallback", r.Value(unresolved, p))
}
