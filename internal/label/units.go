package label

// ScreenDPI is the pixel density assumed for on-screen preview and designer geometry.
const ScreenDPI = 96.0

const mmPerInch = 25.4

// MmToPixels converts millimetres to preview pixels at ScreenDPI.
func MmToPixels(mm float64) float64 {
	return mm * ScreenDPI / mmPerInch
}

// PixelsToMm is the inverse of MmToPixels. The designer uses it to turn pointer deltas into template coordinates.
func PixelsToMm(px float64) float64 {
	return px * mmPerInch / ScreenDPI
}

// PxToPt converts CSS pixels to PDF points (1px = 0.75pt).
func PxToPt(px float64) float64 {
	return px * 0.75
}

// Scale maps template millimetres into the unit system of a render surface.
type Scale func(mm float64) float64

var (
	// PixelScale is used by the preview surfaces.
	PixelScale Scale = MmToPixels
	// MillimetreScale is used by print surfaces that accept physical units directly.
	MillimetreScale Scale = func(mm float64) float64 { return mm }
)
