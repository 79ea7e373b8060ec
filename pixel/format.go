package pixel

import "image/color"

// Format is an in-memory pixel layout. The set is closed; the zero value is
// FormatUnknown and is never valid for an Image.
type Format uint8

const (
	// FormatUnknown is the invalid zero value.
	FormatUnknown Format = iota
	// FormatRGBA8888 stores R, G, B, A bytes (OpenGL GL_RGBA order).
	FormatRGBA8888
	// FormatBGRA8888 stores B, G, R, A bytes (little-endian ARGB words).
	FormatBGRA8888
	// FormatRGB888 stores R, G, B bytes.
	FormatRGB888
	// FormatBGR888 stores B, G, R bytes.
	FormatBGR888
	// FormatGray8 stores one luminance byte.
	FormatGray8
	// FormatGrayAlpha88 stores luminance then alpha.
	FormatGrayAlpha88

	formatCount
)

type formatInfo struct {
	name       string
	bpp        int
	r, g, b, a int // byte offsets, -1 if absent
	gray       bool
}

var formatTable = [formatCount]formatInfo{
	FormatUnknown:     {name: "unknown", r: -1, g: -1, b: -1, a: -1},
	FormatRGBA8888:    {name: "RGBA8888", bpp: 4, r: 0, g: 1, b: 2, a: 3},
	FormatBGRA8888:    {name: "BGRA8888", bpp: 4, r: 2, g: 1, b: 0, a: 3},
	FormatRGB888:      {name: "RGB888", bpp: 3, r: 0, g: 1, b: 2, a: -1},
	FormatBGR888:      {name: "BGR888", bpp: 3, r: 2, g: 1, b: 0, a: -1},
	FormatGray8:       {name: "GRAY8", bpp: 1, r: 0, g: 0, b: 0, a: -1, gray: true},
	FormatGrayAlpha88: {name: "GRAYALPHA88", bpp: 2, r: 0, g: 0, b: 0, a: 1, gray: true},
}

// Formats lists every valid Format.
var Formats = [...]Format{
	FormatRGBA8888,
	FormatBGRA8888,
	FormatRGB888,
	FormatBGR888,
	FormatGray8,
	FormatGrayAlpha88,
}

func (f Format) info() formatInfo {
	if f >= formatCount {
		return formatTable[FormatUnknown]
	}
	return formatTable[f]
}

// Valid reports whether f is a usable layout.
func (f Format) Valid() bool { return f != FormatUnknown && f < formatCount }

// BytesPerPixel returns the pixel size, or 0 for an invalid Format.
func (f Format) BytesPerPixel() int { return f.info().bpp }

// Channels returns the number of stored channels.
func (f Format) Channels() int { return f.info().bpp }

// HasAlpha reports whether the layout stores alpha.
func (f Format) HasAlpha() bool { return f.info().a >= 0 }

// IsGray reports whether the layout stores luminance instead of RGB.
func (f Format) IsGray() bool { return f.info().gray }

// Offsets returns byte offsets of red, green, blue and alpha within a pixel.
// Gray layouts report the luminance offset for all three color channels.
// Absent channels are -1.
func (f Format) Offsets() (r, g, b, a int) {
	i := f.info()
	return i.r, i.g, i.b, i.a
}

func (f Format) String() string {
	return f.info().name
}

// ColorModel returns the image/color model matching the layout's content.
func (f Format) ColorModel() color.Model {
	if f == FormatGray8 {
		return color.GrayModel
	}
	return color.NRGBAModel
}
