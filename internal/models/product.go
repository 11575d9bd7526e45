package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalogue record labels are printed for. Optional values stay
// optional here; the label field resolver owns every fallback.
type Product struct {
	ID            string              `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name          string              `gorm:"not null;index" json:"name"`
	SKU           string              `gorm:"column:sku;index" json:"sku"`
	Barcode       string              `gorm:"index" json:"barcode"`
	Price         decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"price"`
	MRP           decimal.NullDecimal `gorm:"column:mrp;type:numeric(12,2)" json:"mrp"`
	Cost          decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"cost"`
	Weight        decimal.NullDecimal `gorm:"type:numeric(12,3)" json:"weight"`
	WeightUnit    string              `gorm:"type:varchar(16)" json:"weightUnit"`
	HSNCode       string              `gorm:"column:hsn_code;type:varchar(16)" json:"hsnCode"`
	GSTCode       string              `gorm:"column:gst_code;type:varchar(16)" json:"gstCode"`
	Category      string              `gorm:"index" json:"category"`
	StockQuantity int                 `json:"stockQuantity"`
	Brand         string              `json:"brand"`
	Model         string              `json:"model"`
	Size          string              `json:"size"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns an id to products created without one.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
