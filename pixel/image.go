package pixel

import (
	"fmt"
	"image/color"
)

// Image is a decoded raster: tightly packed rows, top row first.
type Image struct {
	pix    []byte
	width  int
	height int
	format Format
}

// New wraps pix as an image. The image takes ownership of pix; callers must
// not modify the slice afterwards except through the returned Image.
func New(width, height int, format Format, pix []byte) (*Image, error) {
	want, err := BufferLen(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d %s", err, width, height, format)
	}
	if len(pix) != want {
		return nil, fmt.Errorf("%w: %dx%d %s needs %d bytes, got %d", ErrBufferSize, width, height, format, want, len(pix))
	}

	return &Image{pix: pix, width: width, height: height, format: format}, nil
}

// Alloc returns a zero-filled image.
func Alloc(width, height int, format Format) (*Image, error) {
	n, err := BufferLen(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d %s", err, width, height, format)
	}

	return &Image{pix: make([]byte, n), width: width, height: height, format: format}, nil
}

// Width returns the width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the height in pixels.
func (m *Image) Height() int { return m.height }

// Format returns the pixel layout.
func (m *Image) Format() Format { return m.format }

// Pix returns the pixel buffer. The slice is owned by the image.
func (m *Image) Pix() []byte { return m.pix }

// Stride returns the number of bytes per row.
func (m *Image) Stride() int { return m.width * m.format.BytesPerPixel() }

// PixOffset returns the index of the first byte of pixel (x, y).
func (m *Image) PixOffset(x, y int) int {
	return y*m.Stride() + x*m.format.BytesPerPixel()
}

// NRGBAAt returns the non-premultiplied color at (x, y). Out of range
// coordinates return the zero color.
func (m *Image) NRGBAAt(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return color.NRGBA{}
	}

	i := m.PixOffset(x, y)
	return readNRGBA(m.pix[i:], m.format)
}

// SetNRGBA stores c at (x, y). Gray layouts keep the red channel.
func (m *Image) SetNRGBA(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}

	i := m.PixOffset(x, y)
	writeNRGBA(m.pix[i:], m.format, c)
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]byte, len(m.pix))
	copy(pix, m.pix)

	return &Image{pix: pix, width: m.width, height: m.height, format: m.format}
}

func readNRGBA(p []byte, f Format) color.NRGBA {
	r, g, b, a := f.Offsets()
	c := color.NRGBA{R: p[r], G: p[g], B: p[b], A: 0xff}
	if a >= 0 {
		c.A = p[a]
	}

	return c
}

func writeNRGBA(p []byte, f Format, c color.NRGBA) {
	r, g, b, a := f.Offsets()
	if f.IsGray() {
		p[r] = c.R
	} else {
		p[r], p[g], p[b] = c.R, c.G, c.B
	}
	if a >= 0 {
		p[a] = c.A
	}
}
