package pixcodec

import (
	"fmt"

	"github.com/woozymasta/pixcodec/pixel"
	"github.com/woozymasta/pixcodec/tga"
)

// WriteOptions configures Write calls.
type WriteOptions struct {
	// Compress selects run-length encoding where the format supports it.
	Compress bool
}

// Write encodes img as t with default options.
func Write(img *pixel.Image, t ImageType) ([]byte, error) {
	return WriteWithOptions(img, t, nil)
}

// WriteWithOptions encodes img as t. Only TGA has an encoder; every other
// type fails with ErrUnsupportedWrite.
func WriteWithOptions(img *pixel.Image, t ImageType, opts *WriteOptions) ([]byte, error) {
	if !t.CanWrite() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedWrite, t)
	}

	compress := opts != nil && opts.Compress
	return tga.EncodeWithOptions(img, &tga.WriteOptions{Compress: compress})
}
