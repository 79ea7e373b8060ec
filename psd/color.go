package psd

import "image/color"

// normalize widens or narrows one stored plane to one byte per pixel.
// Bitmap samples are inverted: a set bit is black.
func normalize(plane []byte, width, height, depth int) []byte {
	switch depth {
	case 8:
		return plane
	case 16:
		out := make([]byte, width*height)
		for i := range out {
			v := uint32(plane[2*i])<<8 | uint32(plane[2*i+1])
			out[i] = uint8((v + 128) / 257) //nolint:gosec // result <= 255
		}
		return out
	case 1:
		rowBytes := (width + 7) / 8
		out := make([]byte, width*height)
		for y := 0; y < height; y++ {
			row := plane[y*rowBytes:]
			for x := 0; x < width; x++ {
				if row[x>>3]&(0x80>>(x&7)) == 0 {
					out[y*width+x] = 0xff
				}
			}
		}
		return out
	}
	return nil
}

// colorizer maps normalized color planes to NRGBA for one color mode.
type colorizer struct {
	mode    ColorMode
	palette []color.NRGBA
}

// at returns the color of pixel i. planes holds the mode's color channels in
// order; missing planes read as zero.
func (c colorizer) at(planes [][]byte, i int) color.NRGBA {
	v := func(n int) uint8 {
		if n < len(planes) && planes[n] != nil {
			return planes[n][i]
		}
		return 0
	}

	switch c.mode {
	case ColorModeIndexed:
		if c.palette == nil {
			return color.NRGBA{A: 0xff}
		}
		return c.palette[v(0)]
	case ColorModeRGB:
		return color.NRGBA{R: v(0), G: v(1), B: v(2), A: 0xff}
	case ColorModeCMYK:
		// Stored samples are complemented: 255 means no ink.
		k := uint32(v(3))
		return color.NRGBA{
			R: uint8(uint32(v(0)) * k / 255), //nolint:gosec // product of bytes over 255
			G: uint8(uint32(v(1)) * k / 255), //nolint:gosec // product of bytes over 255
			B: uint8(uint32(v(2)) * k / 255), //nolint:gosec // product of bytes over 255
			A: 0xff,
		}
	default:
		g := v(0)
		return color.NRGBA{R: g, G: g, B: g, A: 0xff}
	}
}

// fill writes n pixels of planes into pix as RGBA. alpha may be nil.
func (c colorizer) fill(pix []byte, planes [][]byte, alpha []byte, n int) {
	for i := 0; i < n; i++ {
		px := c.at(planes, i)
		if alpha != nil {
			px.A = alpha[i]
		}
		p := pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = px.R, px.G, px.B, px.A
	}
}
