package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions indicates a zero, negative or oversized width/height.
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	// ErrInvalidFormat indicates a Format outside the supported set.
	ErrInvalidFormat = errors.New("invalid pixel format")
	// ErrBufferSize indicates the pixel buffer does not match the geometry.
	ErrBufferSize = errors.New("pixel buffer size mismatch")
	// ErrSizeOverflow indicates width*height*bpp does not fit in an int.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrUnsupportedConversion indicates a layout change needing color-space math.
	ErrUnsupportedConversion = errors.New("unsupported format conversion")
)

// DecodeError reports why a container could not be decoded, and where.
type DecodeError struct {
	// Format is the container name, e.g. "tga".
	Format string
	// Section names the structure being read, e.g. "header" or "layer 3".
	Section string
	// Offset is the byte offset of the failure, or -1 when unknown.
	Offset int64
	// Err is the underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s: offset %d: %v", e.Format, e.Section, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Format, e.Section, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError builds a DecodeError. Use offset -1 when unknown.
func NewDecodeError(format, section string, offset int, err error) *DecodeError {
	return &DecodeError{Format: format, Section: section, Offset: int64(offset), Err: err}
}
