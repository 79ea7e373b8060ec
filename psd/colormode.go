package psd

import "fmt"

// ColorMode is the document color mode stored in the header.
type ColorMode uint16

// Color modes defined by the file format.
const (
	ColorModeBitmap       ColorMode = 0
	ColorModeGrayscale    ColorMode = 1
	ColorModeIndexed      ColorMode = 2
	ColorModeRGB          ColorMode = 3
	ColorModeCMYK         ColorMode = 4
	ColorModeMultichannel ColorMode = 7
	ColorModeDuotone      ColorMode = 8
	ColorModeLab          ColorMode = 9
)

// Valid reports whether m is a defined color mode.
func (m ColorMode) Valid() bool {
	switch m {
	case ColorModeBitmap, ColorModeGrayscale, ColorModeIndexed, ColorModeRGB,
		ColorModeCMYK, ColorModeMultichannel, ColorModeDuotone, ColorModeLab:
		return true
	default:
		return false
	}
}

// Decodable reports whether pixels in mode m can be mapped to RGBA without a
// color-space conversion.
func (m ColorMode) Decodable() bool {
	return m.Valid() && m != ColorModeMultichannel && m != ColorModeLab
}

// colorChannels returns the number of channels that carry color.
func (m ColorMode) colorChannels() int {
	switch m {
	case ColorModeRGB, ColorModeLab:
		return 3
	case ColorModeCMYK:
		return 4
	default:
		return 1
	}
}

func (m ColorMode) String() string {
	switch m {
	case ColorModeBitmap:
		return "Bitmap"
	case ColorModeGrayscale:
		return "Grayscale"
	case ColorModeIndexed:
		return "Indexed"
	case ColorModeRGB:
		return "RGB"
	case ColorModeCMYK:
		return "CMYK"
	case ColorModeMultichannel:
		return "Multichannel"
	case ColorModeDuotone:
		return "Duotone"
	case ColorModeLab:
		return "Lab"
	default:
		return fmt.Sprintf("ColorMode(%d)", uint16(m))
	}
}

// Compression is the per-channel compression tag.
type Compression uint16

// Channel compression methods.
const (
	CompressionRaw           Compression = 0
	CompressionRLE           Compression = 1
	CompressionZip           Compression = 2
	CompressionZipPrediction Compression = 3
)

// Valid reports whether c is a defined compression method.
func (c Compression) Valid() bool { return c <= CompressionZipPrediction }

func (c Compression) String() string {
	switch c {
	case CompressionRaw:
		return "raw"
	case CompressionRLE:
		return "rle"
	case CompressionZip:
		return "zip"
	case CompressionZipPrediction:
		return "zip-prediction"
	default:
		return fmt.Sprintf("Compression(%d)", uint16(c))
	}
}
