package label

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/poslabel/internal/models"
)

// PlaceholderBarcode is printed when neither a barcode nor a SKU is available.
const PlaceholderBarcode = "123456789012"

// Store identity printed by the storeName and storeAddress fields until it is
// configured per store.
const (
	DefaultStoreName    = "M MART"
	DefaultStoreAddress = "Main Road, City Centre"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "3:04:05 PM"
)

var fieldNames = []string{
	"name", "sku", "barcode", "price", "mrp", "cost", "weight",
	"hsnCode", "gstCode", "category", "stockQuantity",
	"brand", "model", "size",
	"storeName", "storeAddress", "date", "time",
}

// Fields returns the data-field vocabulary an element may bind to.
func Fields() []string {
	return append([]string(nil), fieldNames...)
}

// StoreInfo identifies the shop printed on labels.
type StoreInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Resolver maps a data-field name and a product to display text. It never
// fails: missing data degrades to a fixed default.
type Resolver struct {
	Store StoreInfo
	// Now supplies the instant used by the date and time fields.
	Now func() time.Time
	// Location formats date and time; nil means the instant's own zone.
	Location *time.Location
}

// NewResolver returns a resolver with the default store identity and the wall clock.
func NewResolver() *Resolver {
	return &Resolver{
		Store: StoreInfo{Name: DefaultStoreName, Address: DefaultStoreAddress},
		Now:   time.Now,
	}
}

// Resolve returns the display value of field for p. Unknown fields resolve to "".
func (r *Resolver) Resolve(p *models.Product, field string) string {
	if p == nil {
		p = &models.Product{}
	}
	switch field {
	case "name":
		return p.Name
	case "sku":
		return "SKU: " + p.SKU
	case "barcode":
		if p.Barcode != "" {
			return p.Barcode
		}
		if p.SKU != "" {
			return p.SKU
		}
		return PlaceholderBarcode
	case "price":
		return money(p.Price)
	case "mrp":
		if p.MRP.Valid {
			return money(p.MRP)
		}
		return money(p.Price)
	case "cost":
		return money(p.Cost)
	case "weight":
		if !p.Weight.Valid {
			return ""
		}
		unit := p.WeightUnit
		if unit == "" {
			unit = "g"
		}
		return p.Weight.Decimal.String() + " " + unit
	case "hsnCode":
		return p.HSNCode
	case "gstCode":
		return p.GSTCode
	case "category":
		return p.Category
	case "stockQuantity":
		return "Stock: " + strconv.Itoa(p.StockQuantity)
	case "brand":
		return p.Brand
	case "model":
		return p.Model
	case "size":
		return p.Size
	case "storeName":
		return r.storeName()
	case "storeAddress":
		return r.storeAddress()
	case "date":
		return r.now().Format(dateLayout)
	case "time":
		return r.now().Format(timeLayout)
	}
	return ""
}

// Value returns what el displays for p: the bound field when it resolves to
// something, otherwise the element's literal content.
func (r *Resolver) Value(el Element, p *models.Product) string {
	if el.DataField != "" {
		if v := r.Resolve(p, el.DataField); v != "" {
			return v
		}
	}
	return el.Content
}

func (r *Resolver) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now()
	if r.Location != nil {
		t = t.In(r.Location)
	}
	return t
}

func (r *Resolver) storeName() string {
	if r.Store.Name != "" {
		return r.Store.Name
	}
	return DefaultStoreName
}

func (r *Resolver) storeAddress() string {
	if r.Store.Address != "" {
		return r.Store.Address
	}
	return DefaultStoreAddress
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return "0.00"
	}
	return d.Decimal.StringFixed(2)
}
