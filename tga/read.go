package tga

import (
	"fmt"
	"image/color"

	"github.com/woozymasta/pixcodec/internal/logging"
	"github.com/woozymasta/pixcodec/pixel"
)

// Decode decodes a TGA image into a top-down pixel.Image.
func Decode(data []byte) (*pixel.Image, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	off := HeaderSize + int(h.IDLength)
	if off > len(data) {
		return nil, decodeError("image id", HeaderSize, fmt.Errorf("%w: id field of %d bytes", ErrTruncated, h.IDLength))
	}

	var palette []color.NRGBA
	if h.ColorMapType == 1 {
		n := h.colorMapBytes()
		if len(data)-off < n {
			return nil, decodeError("color map", off, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(data)-off))
		}
		// Truecolor and grayscale images may carry a palette they do not use.
		if h.ImageType.Base() == TypeColorMapped {
			palette = readPalette(data[off:off+n], h)
		}
		off += n
	}

	width, height := int(h.Width), int(h.Height)
	bpp := h.bytesPerPixel()
	pixelCount := width * height

	var src []byte
	if h.ImageType.RLE() {
		src, _, err = decodeRLE(data[off:], pixelCount, bpp)
		if err != nil {
			return nil, decodeError("rle data", off, err)
		}
	} else {
		n := pixelCount * bpp
		if len(data)-off < n {
			return nil, decodeError("image data", off, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(data)-off))
		}
		src = data[off : off+n]
	}

	img, err := pixel.Alloc(width, height, outputFormat(h))
	if err != nil {
		return nil, decodeError("image data", off, err)
	}

	if err := expand(img, src, h, palette); err != nil {
		return nil, decodeError("image data", off, err)
	}

	logging.Logger().Debug("tga decoded",
		"type", h.ImageType.String(),
		"width", width,
		"height", height,
		"depth", h.PixelDepth,
		"format", img.Format().String())

	return img, nil
}

// outputFormat picks the direct layout a header decodes into.
func outputFormat(h *Header) pixel.Format {
	switch h.ImageType.Base() {
	case TypeGrayscale:
		if h.PixelDepth == 16 {
			return pixel.FormatGrayAlpha88
		}
		return pixel.FormatGray8
	case TypeColorMapped:
		return directFormat(h.ColorMapDepth, h.AlphaBits())
	default:
		return directFormat(h.PixelDepth, h.AlphaBits())
	}
}

func directFormat(depth uint8, alphaBits int) pixel.Format {
	switch {
	case depth == 32:
		return pixel.FormatRGBA8888
	case depth == 16 && alphaBits > 0:
		return pixel.FormatRGBA8888
	default:
		return pixel.FormatRGB888
	}
}

// expand writes stored pixels into img, resolving palettes and origin.
func expand(img *pixel.Image, src []byte, h *Header, palette []color.NRGBA) error {
	width, height := int(h.Width), int(h.Height)
	bpp := h.bytesPerPixel()
	useAlpha := h.AlphaBits() > 0
	base := h.ImageType.Base()

	for sy := 0; sy < height; sy++ {
		dy := height - 1 - sy
		if h.TopOrigin() {
			dy = sy
		}
		for sx := 0; sx < width; sx++ {
			dx := sx
			if h.RightOrigin() {
				dx = width - 1 - sx
			}

			p := src[(sy*width+sx)*bpp:]
			var c color.NRGBA
			switch base {
			case TypeColorMapped:
				idx := int(p[0])
				if bpp == 2 {
					idx |= int(p[1]) << 8
				}
				entry := idx - int(h.ColorMapOrigin)
				if entry < 0 || entry >= len(palette) {
					return fmt.Errorf("%w: index %d at pixel (%d,%d), palette %d..%d",
						ErrPaletteIndex, idx, sx, sy, h.ColorMapOrigin, int(h.ColorMapOrigin)+len(palette)-1)
				}
				c = palette[entry]
			case TypeGrayscale:
				c = color.NRGBA{R: p[0], G: p[0], B: p[0], A: 0xff}
				if bpp == 2 {
					c.A = p[1]
				}
			default:
				c = readDirect(p, h.PixelDepth, useAlpha)
			}
			img.SetNRGBA(dx, dy, c)
		}
	}

	return nil
}

func readPalette(data []byte, h *Header) []color.NRGBA {
	size := (int(h.ColorMapDepth) + 7) / 8
	useAlpha := h.AlphaBits() > 0
	palette := make([]color.NRGBA, h.ColorMapLength)
	for i := range palette {
		palette[i] = readDirect(data[i*size:], h.ColorMapDepth, useAlpha)
	}
	return palette
}

// readDirect reads one little-endian BGR(A) pixel of the given bit depth.
func readDirect(p []byte, depth uint8, useAlpha bool) color.NRGBA {
	switch depth {
	case 32:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
	case 24:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
	default:
		v := uint16(p[0]) | uint16(p[1])<<8
		c := color.NRGBA{
			R: expand5(v >> 10),
			G: expand5(v >> 5),
			B: expand5(v),
			A: 0xff,
		}
		if depth == 16 && useAlpha && v&0x8000 == 0 {
			c.A = 0
		}
		return c
	}
}

func expand5(v uint16) uint8 {
	x := uint8(v & 0x1f)
	return x<<3 | x>>2
}
