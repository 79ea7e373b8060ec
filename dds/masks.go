package dds

import (
	"fmt"
	"image/color"
	"math/bits"

	"github.com/woozymasta/pixcodec/pixel"
)

// bitMasks describes an uncompressed surface whose channels are packed into
// little-endian words of bitCount bits.
type bitMasks struct {
	bitCount  int
	r, g, b   uint32
	a         uint32
	luminance bool
	alphaOnly bool
}

func (m *bitMasks) validate() error {
	switch m.bitCount {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, m.bitCount)
	}

	limit := uint32(0xffffffff)
	if m.bitCount < 32 {
		limit = 1<<uint(m.bitCount) - 1
	}
	for _, mask := range [...]uint32{m.r, m.g, m.b, m.a} {
		if mask&^limit != 0 {
			return fmt.Errorf("%w: mask 0x%08x exceeds %d bits", ErrInvalidMasks, mask, m.bitCount)
		}
	}

	switch {
	case m.alphaOnly && m.a == 0:
		return fmt.Errorf("%w: alpha surface without alpha mask", ErrInvalidMasks)
	case m.luminance && m.r == 0:
		return fmt.Errorf("%w: luminance surface without luminance mask", ErrInvalidMasks)
	case !m.alphaOnly && !m.luminance && m.r|m.g|m.b == 0:
		return fmt.Errorf("%w: no color masks", ErrInvalidMasks)
	}

	return nil
}

func (m *bitMasks) pitch(width int) (int, error) {
	return mulInt(width, m.bitCount/8)
}

func (m *bitMasks) outputFormat() pixel.Format {
	switch {
	case m.luminance && m.a != 0:
		return pixel.FormatGrayAlpha88
	case m.luminance:
		return pixel.FormatGray8
	case m.alphaOnly || m.a != 0:
		return pixel.FormatRGBA8888
	default:
		return pixel.FormatRGB888
	}
}

// decode unpacks width*height words from data. The caller guarantees data
// holds at least pitch(width)*height bytes.
func (m *bitMasks) decode(data []byte, width, height int) (*pixel.Image, error) {
	img, err := pixel.Alloc(width, height, m.outputFormat())
	if err != nil {
		return nil, err
	}

	r, g, b, a := newChannel(m.r), newChannel(m.g), newChannel(m.b), newChannel(m.a)
	step := m.bitCount / 8
	pitch, err := m.pitch(width)
	if err != nil {
		return nil, err
	}

	for y := 0; y < height; y++ {
		row := data[y*pitch:]
		for x := 0; x < width; x++ {
			v := readWord(row[x*step:], step)

			var c color.NRGBA
			switch {
			case m.alphaOnly:
				c = color.NRGBA{A: a.extract(v)}
			case m.luminance:
				l := r.extract(v)
				c = color.NRGBA{R: l, G: l, B: l, A: 0xff}
			default:
				c = color.NRGBA{R: r.extract(v), G: g.extract(v), B: b.extract(v), A: 0xff}
			}
			if m.a != 0 {
				c.A = a.extract(v)
			}
			img.SetNRGBA(x, y, c)
		}
	}

	return img, nil
}

func readWord(p []byte, n int) uint32 {
	var v uint32
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint32(p[i])
	}
	return v
}

// channel extracts one masked field and rescales it to 8 bits.
type channel struct {
	mask  uint32
	shift int
	max   uint32
	width int
}

func newChannel(mask uint32) channel {
	if mask == 0 {
		return channel{}
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	return channel{
		mask:  mask,
		shift: shift,
		max:   mask >> uint(shift),
		width: width,
	}
}

func (c channel) extract(v uint32) uint8 {
	if c.mask == 0 {
		return 0
	}
	x := (v & c.mask) >> uint(c.shift)
	if c.width >= 8 {
		return uint8(x >> uint(c.width-8)) //nolint:gosec // top 8 bits
	}
	return uint8((x*255 + c.max/2) / c.max) //nolint:gosec // x <= max
}
