package psd

import (
	"errors"

	"github.com/woozymasta/pixcodec/pixel"
)

var (
	// ErrTruncated indicates the data ends inside a structure.
	ErrTruncated = errors.New("truncated data")
	// ErrInvalidSignature indicates the data does not start with "8BPS".
	ErrInvalidSignature = errors.New("invalid PSD signature")
	// ErrUnsupportedVersion indicates a version other than 1 (PSD) or 2 (PSB).
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrInvalidHeader indicates header fields outside their valid ranges.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidDimensions indicates a width or height outside the format limits.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrUnsupportedDepth indicates a channel depth other than 1, 8 or 16.
	ErrUnsupportedDepth = errors.New("unsupported depth")
	// ErrUnknownColorMode indicates a color mode outside the defined set.
	ErrUnknownColorMode = errors.New("unknown color mode")
	// ErrUnsupportedColorMode indicates a color mode that needs color-space conversion.
	ErrUnsupportedColorMode = errors.New("unsupported color mode")
	// ErrInvalidSectionLength indicates a section length past the end of the data.
	ErrInvalidSectionLength = errors.New("invalid section length")
	// ErrInvalidPalette indicates a missing or short indexed color table.
	ErrInvalidPalette = errors.New("invalid palette")
	// ErrUnknownCompression indicates a channel compression tag outside 0..3.
	ErrUnknownCompression = errors.New("unknown compression")
	// ErrRLE indicates corrupt PackBits data.
	ErrRLE = errors.New("invalid RLE data")
	// ErrInflate indicates zip-compressed channel data failed to inflate.
	ErrInflate = errors.New("inflate failed")
	// ErrInvalidLayer indicates a malformed layer record.
	ErrInvalidLayer = errors.New("invalid layer record")
	// ErrNoImageData indicates neither merged image data nor layers are available.
	ErrNoImageData = errors.New("no image data")
	// ErrUnknownStrategy indicates a ReadOptions strategy outside the defined set.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

func decodeError(section string, offset int, err error) error {
	return pixel.NewDecodeError("psd", section, offset, err)
}
