package label

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/skip2/go-qrcode"
)

// ErrEncoding wraps every barcode and QR encoding failure.
var ErrEncoding = errors.New("code encoding failed")

// Symbology selects the linear barcode encoding.
type Symbology string

const (
	SymbologyCode128 Symbology = "CODE128"
	SymbologyEAN13   Symbology = "EAN13"
	SymbologyCode39  Symbology = "CODE39"
	SymbologyUPC     Symbology = "UPC"
)

// ParseSymbology normalizes a barcodeType value. Unknown or empty values mean CODE128.
func ParseSymbology(s string) Symbology {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "EAN13", "EAN":
		return SymbologyEAN13
	case "CODE39":
		return SymbologyCode39
	case "UPC", "UPCA":
		return SymbologyUPC
	}
	return SymbologyCode128
}

// EncodeBarcode returns the module pattern of value: one entry per narrow
// module, true for a bar.
func EncodeBarcode(sym Symbology, value string) ([]bool, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty %s value", ErrEncoding, sym)
	}
	var (
		bc  barcode.Barcode
		err error
	)
	switch sym {
	case SymbologyEAN13:
		if n := len(value); (n != 12 && n != 13) || !digitsOnly(value) {
			return nil, fmt.Errorf("%w: EAN13 needs 12 or 13 digits, got %q", ErrEncoding, value)
		}
		bc, err = ean.Encode(value)
	case SymbologyUPC:
		if n := len(value); (n != 11 && n != 12) || !digitsOnly(value) {
			return nil, fmt.Errorf("%w: UPC needs 11 or 12 digits, got %q", ErrEncoding, value)
		}
		// UPC-A is EAN-13 with a leading zero.
		bc, err = ean.Encode("0" + value)
	case SymbologyCode39:
		bc, err = code39.Encode(strings.ToUpper(value), false, false)
	default:
		bc, err = code128.Encode(value)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrEncoding, sym, value, err)
	}

	bounds := bc.Bounds()
	modules := make([]bool, bounds.Dx())
	for x := range modules {
		modules[x] = isDark(bc.At(bounds.Min.X+x, bounds.Min.Y))
	}
	return modules, nil
}

// EncodeQR returns the module matrix of value without a quiet zone.
// The encoding is deterministic for a given value.
func EncodeQR(value string) ([][]bool, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty QR value", ErrEncoding)
	}
	q, err := qrcode.New(value, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: qr: %v", ErrEncoding, err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r+g+b)/3 < 0x8000
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
