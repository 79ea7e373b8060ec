package psd

import (
	"fmt"
	"image/color"

	"github.com/woozymasta/pixcodec/internal/binread"
)

const paletteSize = 768

// Document is a parsed document without decoded pixels.
type Document struct {
	Header

	// Palette holds the 256 indexed colors in Indexed mode.
	Palette []color.NRGBA
	// Layers are ordered bottom-most first.
	Layers []*Layer
	// MergedAlpha is set when the layer count was stored negative.
	MergedAlpha bool

	composite    []byte
	compositeOff int
}

// HasComposite reports whether the merged image data section is present.
func (d *Document) HasComposite() bool { return len(d.composite) >= 2 }

// Parse reads the header, color mode data and layer records. Channel data is
// kept compressed until a decode asks for it.
func Parse(data []byte) (*Document, error) {
	r := binread.NewBigEndian(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	d := &Document{Header: *h}
	psb := h.PSB()

	off := r.Offset()
	colorData, err := section(r, false)
	if err != nil {
		return nil, decodeError("color mode data", off, err)
	}
	if h.ColorMode == ColorModeIndexed {
		if colorData.Len() < paletteSize {
			return nil, decodeError("color mode data", off, fmt.Errorf("%w: %d bytes, need %d", ErrInvalidPalette, colorData.Len(), paletteSize))
		}
		d.Palette = readPalette(colorData.Rest())
	}

	off = r.Offset()
	if _, err := section(r, false); err != nil {
		return nil, decodeError("image resources", off, err)
	}

	off = r.Offset()
	layerMask, err := section(r, psb)
	if err != nil {
		return nil, decodeError("layer and mask info", off, err)
	}
	if err := d.readLayerAndMask(layerMask); err != nil {
		return nil, decodeError("layer and mask info", off, err)
	}

	d.compositeOff = r.Offset()
	d.composite = r.Rest()

	return d, nil
}

// section reads a length-prefixed block and returns a reader over its body.
func section(r *binread.Reader, long bool) (*binread.Reader, error) {
	n, err := readLength(r, long)
	if err != nil {
		return nil, err
	}
	return r.Sub(n)
}

func readPalette(b []byte) []color.NRGBA {
	p := make([]color.NRGBA, 256)
	for i := range p {
		p[i] = color.NRGBA{R: b[i], G: b[256+i], B: b[512+i], A: 0xff}
	}
	return p
}

func (d *Document) readLayerAndMask(r *binread.Reader) error {
	if r.Len() == 0 {
		return nil
	}
	psb := d.PSB()

	info, err := section(r, psb)
	if err != nil {
		return fmt.Errorf("layer info: %w", err)
	}
	d.Layers, d.MergedAlpha, err = readLayerInfo(info, psb)
	if err != nil {
		return err
	}

	if r.Len() < 4 {
		return nil
	}
	if _, err := section(r, false); err != nil {
		return fmt.Errorf("global layer mask: %w", err)
	}

	// 16-bit documents may keep their layers in a tagged block instead.
	for r.Len() >= 12 {
		sig, _ := r.Peek(4)
		if string(sig) != "8BIM" && string(sig) != "8B64" {
			break
		}
		_ = r.Skip(4)
		key, _ := r.FourCC()
		body, err := section(r, psb && longLengthKeys[key])
		if err != nil {
			return fmt.Errorf("tagged block %q: %w", key, err)
		}
		if pad := (4 - body.Size()%4) % 4; pad <= r.Len() {
			_ = r.Skip(pad)
		}
		if (key == "Lr16" || key == "Lr32") && len(d.Layers) == 0 {
			d.Layers, _, err = readLayerInfo(body, psb)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	return nil
}
