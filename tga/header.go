package tga

import (
	"bytes"
	"fmt"
	"image"

	"github.com/woozymasta/pixcodec/internal/binread"
)

// HeaderSize is the fixed TGA header length.
const HeaderSize = 18

// FooterSignature ends a TGA 2.0 file.
const FooterSignature = "TRUEVISION-XFILE.\x00"

const footerSize = 26

// Descriptor bits.
const (
	descAlphaMask   = 0x0f
	descRightOrigin = 0x10
	descTopOrigin   = 0x20
)

// ImageType is the TGA image type field.
type ImageType uint8

// TGA image types.
const (
	TypeNoImage        ImageType = 0
	TypeColorMapped    ImageType = 1
	TypeTrueColor      ImageType = 2
	TypeGrayscale      ImageType = 3
	TypeColorMappedRLE ImageType = 9
	TypeTrueColorRLE   ImageType = 10
	TypeGrayscaleRLE   ImageType = 11
)

// Valid reports whether t is one of the defined types.
func (t ImageType) Valid() bool {
	switch t {
	case TypeNoImage, TypeColorMapped, TypeTrueColor, TypeGrayscale,
		TypeColorMappedRLE, TypeTrueColorRLE, TypeGrayscaleRLE:
		return true
	default:
		return false
	}
}

// RLE reports whether pixel data is run-length encoded.
func (t ImageType) RLE() bool { return t >= TypeColorMappedRLE }

// Base returns the uncompressed variant of t.
func (t ImageType) Base() ImageType {
	if t.RLE() {
		return t - 8
	}
	return t
}

func (t ImageType) String() string {
	switch t {
	case TypeNoImage:
		return "none"
	case TypeColorMapped:
		return "color-mapped"
	case TypeTrueColor:
		return "truecolor"
	case TypeGrayscale:
		return "grayscale"
	case TypeColorMappedRLE:
		return "color-mapped RLE"
	case TypeTrueColorRLE:
		return "truecolor RLE"
	case TypeGrayscaleRLE:
		return "grayscale RLE"
	default:
		return fmt.Sprintf("ImageType(%d)", uint8(t))
	}
}

// Header is the fixed 18-byte TGA header.
type Header struct {
	IDLength       uint8
	ColorMapType   uint8
	ImageType      ImageType
	ColorMapOrigin uint16
	ColorMapLength uint16
	ColorMapDepth  uint8
	XOrigin        uint16
	YOrigin        uint16
	Width          uint16
	Height         uint16
	PixelDepth     uint8
	Descriptor     uint8
}

// TopOrigin reports whether rows are stored top-down.
func (h *Header) TopOrigin() bool { return h.Descriptor&descTopOrigin != 0 }

// RightOrigin reports whether columns are stored right-to-left.
func (h *Header) RightOrigin() bool { return h.Descriptor&descRightOrigin != 0 }

// AlphaBits returns the attribute bits per pixel declared by the descriptor.
func (h *Header) AlphaBits() int { return int(h.Descriptor & descAlphaMask) }

// ReadHeader parses and validates the header at the start of data.
func ReadHeader(data []byte) (*Header, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, decodeError("header", 0, err)
	}
	if err := h.validate(); err != nil {
		return nil, decodeError("header", 0, err)
	}

	return h, nil
}

// ReadConfig returns the dimensions and color model without decoding pixels.
func ReadConfig(data []byte) (image.Config, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		Width:      int(h.Width),
		Height:     int(h.Height),
		ColorModel: outputFormat(h).ColorModel(),
	}, nil
}

// Plausible reports whether data starts with a header this package can
// decode. TGA has no magic number, so this is a field sanity check.
func Plausible(data []byte) bool {
	h, err := parseHeader(data)
	if err != nil || h.validate() != nil {
		return false
	}
	if h.Descriptor&0xc0 != 0 {
		return false
	}

	return len(data) >= HeaderSize+int(h.IDLength)+h.colorMapBytes()
}

// HasFooter reports whether data ends with a TGA 2.0 footer.
func HasFooter(data []byte) bool {
	if len(data) < HeaderSize+footerSize {
		return false
	}
	return bytes.Equal(data[len(data)-len(FooterSignature):], []byte(FooterSignature))
}

func parseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}

	r := binread.NewLittleEndian(data[:HeaderSize])
	h := &Header{}
	// The slice is exactly HeaderSize bytes, so reads cannot fail.
	h.IDLength, _ = r.U8()
	h.ColorMapType, _ = r.U8()
	t, _ := r.U8()
	h.ImageType = ImageType(t)
	h.ColorMapOrigin, _ = r.U16()
	h.ColorMapLength, _ = r.U16()
	h.ColorMapDepth, _ = r.U8()
	h.XOrigin, _ = r.U16()
	h.YOrigin, _ = r.U16()
	h.Width, _ = r.U16()
	h.Height, _ = r.U16()
	h.PixelDepth, _ = r.U8()
	h.Descriptor, _ = r.U8()

	return h, nil
}

func (h *Header) validate() error {
	if !h.ImageType.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownImageType, uint8(h.ImageType))
	}
	if h.ImageType == TypeNoImage {
		return ErrNoImageData
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.Width, h.Height)
	}
	if h.ColorMapType > 1 {
		return fmt.Errorf("%w: color map type %d", ErrInvalidColorMap, h.ColorMapType)
	}
	if h.ColorMapType == 1 && !validPaletteDepth(h.ColorMapDepth) {
		return fmt.Errorf("%w: palette depth %d", ErrUnsupportedDepth, h.ColorMapDepth)
	}

	switch h.ImageType.Base() {
	case TypeColorMapped:
		if h.ColorMapType != 1 || h.ColorMapLength == 0 {
			return fmt.Errorf("%w: color-mapped image without palette", ErrInvalidColorMap)
		}
		if h.PixelDepth != 8 && h.PixelDepth != 16 {
			return fmt.Errorf("%w: %d-bit index", ErrUnsupportedDepth, h.PixelDepth)
		}
	case TypeTrueColor:
		switch h.PixelDepth {
		case 15, 16, 24, 32:
		default:
			return fmt.Errorf("%w: %d-bit truecolor", ErrUnsupportedDepth, h.PixelDepth)
		}
	case TypeGrayscale:
		if h.PixelDepth != 8 && h.PixelDepth != 16 {
			return fmt.Errorf("%w: %d-bit grayscale", ErrUnsupportedDepth, h.PixelDepth)
		}
	}

	return nil
}

func validPaletteDepth(d uint8) bool {
	switch d {
	case 15, 16, 24, 32:
		return true
	default:
		return false
	}
}

// bytesPerPixel returns the stored size of one pixel or palette index.
func (h *Header) bytesPerPixel() int {
	return (int(h.PixelDepth) + 7) / 8
}

func (h *Header) colorMapBytes() int {
	if h.ColorMapType == 0 {
		return 0
	}
	return int(h.ColorMapLength) * ((int(h.ColorMapDepth) + 7) / 8)
}
