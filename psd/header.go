package psd

import (
	"fmt"
	"image"
	"image/color"

	"github.com/woozymasta/pixcodec/internal/binread"
)

const (
	// Magic is the four-byte signature at the start of every document.
	Magic = "8BPS"
	// HeaderSize is the fixed header length.
	HeaderSize = 26

	versionPSD = 1
	versionPSB = 2

	maxChannels  = 56
	maxSizePSD   = 30000
	maxSizePSB   = 300000
	colorModeOff = 24
)

// Header is the fixed document header.
type Header struct {
	Version   uint16
	Channels  int
	Height    int
	Width     int
	Depth     int
	ColorMode ColorMode
}

// PSB reports whether the document uses the large document layout.
func (h *Header) PSB() bool { return h.Version == versionPSB }

// ReadHeader parses and validates the document header.
func ReadHeader(data []byte) (*Header, error) {
	return readHeader(binread.NewBigEndian(data))
}

// ReadConfig returns the document dimensions. Decoded documents are always
// RGBA, so the color model is NRGBA.
func ReadConfig(data []byte) (image.Config, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{Width: h.Width, Height: h.Height, ColorModel: color.NRGBAModel}, nil
}

func readHeader(r *binread.Reader) (*Header, error) {
	if r.Len() < HeaderSize {
		return nil, decodeError("header", 0, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, HeaderSize, r.Len()))
	}

	sig, _ := r.FourCC()
	if sig != Magic {
		return nil, decodeError("header", 0, fmt.Errorf("%w: %q", ErrInvalidSignature, sig))
	}

	version, _ := r.U16()
	_ = r.Skip(6)
	channels, _ := r.U16()
	height, _ := r.U32()
	width, _ := r.U32()
	depth, _ := r.U16()
	mode, _ := r.U16()

	h := &Header{
		Version:   version,
		Channels:  int(channels),
		Height:    int(height),
		Width:     int(width),
		Depth:     int(depth),
		ColorMode: ColorMode(mode),
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) validate() error {
	limit := maxSizePSD
	switch h.Version {
	case versionPSD:
	case versionPSB:
		limit = maxSizePSB
	default:
		return decodeError("header", 4, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version))
	}

	if h.Channels < 1 || h.Channels > maxChannels {
		return decodeError("header", 12, fmt.Errorf("%w: %d channels", ErrInvalidHeader, h.Channels))
	}
	if h.Width < 1 || h.Height < 1 || h.Width > limit || h.Height > limit {
		return decodeError("header", 14, fmt.Errorf("%w: %dx%d, limit %d", ErrInvalidDimensions, h.Width, h.Height, limit))
	}

	switch h.Depth {
	case 1, 8, 16:
	default:
		return decodeError("header", 22, fmt.Errorf("%w: %d bits", ErrUnsupportedDepth, h.Depth))
	}

	if !h.ColorMode.Valid() {
		return decodeError("header", colorModeOff, fmt.Errorf("%w: %d", ErrUnknownColorMode, uint16(h.ColorMode)))
	}
	if (h.ColorMode == ColorModeBitmap) != (h.Depth == 1) {
		return decodeError("header", 22, fmt.Errorf("%w: %d bits in %s mode", ErrUnsupportedDepth, h.Depth, h.ColorMode))
	}
	if h.Channels < h.ColorMode.colorChannels() {
		return decodeError("header", 12, fmt.Errorf("%w: %s needs %d channels, have %d",
			ErrInvalidHeader, h.ColorMode, h.ColorMode.colorChannels(), h.Channels))
	}

	return nil
}
