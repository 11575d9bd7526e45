package settings

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/poslabel/internal/label"
)

// Printer connection types.
const (
	ConnectionUSB       = "usb"
	ConnectionNetwork   = "network"
	ConnectionBluetooth = "bluetooth"
	ConnectionSystem    = "system"
)

// PrinterProfile describes the printer labels are sent to. Rendering only
// reads it.
type PrinterProfile struct {
	Name        string  `json:"name"`
	PaperWidth  float64 `json:"paperWidth"`
	PaperHeight float64 `json:"paperHeight"`
	Margin      float64 `json:"margin"`
	Density     int     `json:"density"`
	Speed       int     `json:"speed"`
	Connection  string  `json:"connection"`
	Address     string  `json:"address,omitempty"`
}

// DefaultPrinterProfile is an A4 sheet printed through the browser.
func DefaultPrinterProfile() PrinterProfile {
	return PrinterProfile{
		Name:        "A4 sheet",
		PaperWidth:  210,
		PaperHeight: 297,
		Margin:      5,
		Density:     8,
		Speed:       4,
		Connection:  ConnectionSystem,
	}
}

// Validate checks the profile before it is stored.
func (p PrinterProfile) Validate() error {
	if p.PaperWidth < 0 || p.PaperHeight < 0 || p.Margin < 0 {
		return fmt.Errorf("printer profile: paper size and margin must not be negative")
	}
	switch p.Connection {
	case ConnectionUSB, ConnectionNetwork, ConnectionBluetooth, ConnectionSystem, "":
	default:
		return fmt.Errorf("printer profile: unknown connection %q", p.Connection)
	}
	if p.Density < 0 || p.Density > 15 {
		return fmt.Errorf("printer profile: density must be between 0 and 15")
	}
	return nil
}

// Paper returns the page geometry the print surfaces lay labels onto.
func (p PrinterProfile) Paper() label.Paper {
	return label.Paper{Width: p.PaperWidth, Height: p.PaperHeight, Margin: p.Margin}
}

// ReceiptSettings control how sales receipts are formatted.
type ReceiptSettings struct {
	Header           string `json:"header"`
	Footer           string `json:"footer"`
	PaperWidth       int    `json:"paperWidth"`
	ShowLogo         bool   `json:"showLogo"`
	ShowGSTBreakdown bool   `json:"showGstBreakdown"`
	ShowBarcode      bool   `json:"showBarcode"`
}

func DefaultReceiptSettings() ReceiptSettings {
	return ReceiptSettings{
		Header:           label.DefaultStoreName,
		Footer:           "Thank you for shopping with us!",
		PaperWidth:       80,
		ShowGSTBreakdown: true,
	}
}

// TaxSlab is one GST rate a product can be assigned through its gstCode.
type TaxSlab struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// TaxSettings hold the shop's GST configuration. Computation lives elsewhere.
type TaxSettings struct {
	GSTIN           string    `json:"gstin"`
	PricesInclusive bool      `json:"pricesInclusive"`
	Slabs           []TaxSlab `json:"slabs"`
}

func DefaultTaxSettings() TaxSettings {
	return TaxSettings{
		PricesInclusive: true,
		Slabs: []TaxSlab{
			{Code: "GST0", Rate: decimal.Zero},
			{Code: "GST5", Rate: decimal.NewFromInt(5)},
			{Code: "GST12", Rate: decimal.NewFromInt(12)},
			{Code: "GST18", Rate: decimal.NewFromInt(18)},
			{Code: "GST28", Rate: decimal.NewFromInt(28)},
		},
	}
}

// LabelSettings remember the label page's last choices.
type LabelSettings struct {
	SelectedTemplateID string `json:"selectedTemplateId"`
	CopiesPerProduct   int    `json:"copiesPerProduct"`
}

func DefaultLabelSettings() LabelSettings {
	return LabelSettings{SelectedTemplateID: label.DefaultTemplateID, CopiesPerProduct: 1}
}

// DefaultStore is the store identity used before one is configured.
func DefaultStore() label.StoreInfo {
	return label.StoreInfo{Name: label.DefaultStoreName, Address: label.DefaultStoreAddress}
}
