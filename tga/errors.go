package tga

import (
	"errors"

	"github.com/woozymasta/pixcodec/pixel"
)

var (
	// ErrTruncated indicates the input ends before the image is complete.
	ErrTruncated = errors.New("truncated data")
	// ErrNoImageData indicates image type 0.
	ErrNoImageData = errors.New("no image data")
	// ErrUnknownImageType indicates an image type outside the TGA set.
	ErrUnknownImageType = errors.New("unknown image type")
	// ErrUnsupportedDepth indicates a pixel or palette depth the type cannot use.
	ErrUnsupportedDepth = errors.New("unsupported pixel depth")
	// ErrInvalidDimensions indicates zero width or height.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrInvalidColorMap indicates inconsistent color map fields.
	ErrInvalidColorMap = errors.New("invalid color map")
	// ErrPaletteIndex indicates a pixel references a missing palette entry.
	ErrPaletteIndex = errors.New("palette index out of range")
	// ErrUnsupportedPixelFormat indicates Encode got a layout TGA cannot store.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	// ErrNilImage indicates Encode got a nil image.
	ErrNilImage = errors.New("nil image")
)

func decodeError(section string, offset int, err error) error {
	return pixel.NewDecodeError("tga", section, offset, err)
}
