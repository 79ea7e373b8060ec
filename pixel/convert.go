package pixel

import "fmt"

// Convert returns a copy of m in another layout. Channels are reordered,
// gray is expanded to equal RGB, and a missing alpha becomes opaque.
// Reducing RGB to gray is a color-space conversion and is refused.
func (m *Image) Convert(format Format) (*Image, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormat, format)
	}
	if format == m.format {
		return m.Clone(), nil
	}
	if format.IsGray() && !m.format.IsGray() {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, m.format, format)
	}

	out, err := Alloc(m.width, m.height, format)
	if err != nil {
		return nil, err
	}

	srcBpp := m.format.BytesPerPixel()
	dstBpp := format.BytesPerPixel()
	n := m.width * m.height
	for i := 0; i < n; i++ {
		c := readNRGBA(m.pix[i*srcBpp:], m.format)
		writeNRGBA(out.pix[i*dstBpp:], format, c)
	}

	return out, nil
}
