package pixcodec

import (
	"fmt"

	"github.com/woozymasta/bcn"

	"github.com/woozymasta/pixcodec/dds"
	"github.com/woozymasta/pixcodec/internal/logging"
	"github.com/woozymasta/pixcodec/pixel"
	"github.com/woozymasta/pixcodec/psd"
	"github.com/woozymasta/pixcodec/tga"
)

// ReadOptions configures Read calls. The zero value decodes into each
// codec's natural layout.
type ReadOptions struct {
	// Format converts the decoded image when not pixel.FormatUnknown.
	Format pixel.Format
	// PSDStrategy selects merged or layer-composited PSD pixels.
	PSDStrategy psd.Strategy
	// DDSDecodeOptions are passed to the BCn decoder.
	DDSDecodeOptions *bcn.DecodeOptions
}

// Read detects the container of data by signature and decodes it.
func Read(data []byte) (*pixel.Image, error) {
	return ReadWithOptions(data, "", nil)
}

// ReadNamed decodes data, using name's extension when no signature matches.
func ReadNamed(data []byte, name string) (*pixel.Image, error) {
	return ReadWithOptions(data, name, nil)
}

// ReadWithOptions detects and decodes data. Nil opts uses defaults.
func ReadWithOptions(data []byte, name string, opts *ReadOptions) (*pixel.Image, error) {
	t, err := Detect(data, name)
	if err != nil {
		return nil, err
	}
	return ReadType(t, data, opts)
}

// ReadType decodes data as t without detection. Nil opts uses defaults.
func ReadType(t ImageType, data []byte, opts *ReadOptions) (*pixel.Image, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}

	var (
		img *pixel.Image
		err error
	)
	switch t {
	case TypeDDS:
		img, err = dds.DecodeWithOptions(data, &dds.ReadOptions{DecodeOptions: opts.DDSDecodeOptions})
	case TypePSD:
		img, err = psd.DecodeWithOptions(data, &psd.ReadOptions{Strategy: opts.PSDStrategy})
	case TypeTGA:
		img, err = tga.Decode(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, t)
	}
	if err != nil {
		return nil, err
	}

	if opts.Format != pixel.FormatUnknown && opts.Format != img.Format() {
		converted, err := img.Convert(opts.Format)
		if err != nil {
			return nil, fmt.Errorf("convert %s image: %w", t, err)
		}
		logging.Logger().Debug("pixcodec converted", "type", t.String(), "from", img.Format().String(), "to", converted.Format().String())
		img = converted
	}

	return img, nil
}
