package tga

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/woozymasta/pixcodec/internal/logging"
	"github.com/woozymasta/pixcodec/pixel"
)

// WriteOptions configures TGA encoding.
type WriteOptions struct {
	// Compress selects run-length encoded image types.
	Compress bool
}

// Encode writes img as an uncompressed TGA.
func Encode(img *pixel.Image) ([]byte, error) {
	return EncodeWithOptions(img, nil)
}

// EncodeWithOptions writes img as a TGA. Nil opts writes uncompressed data.
//
// Truecolor layouts are stored as 24- or 32-bit BGR(A), gray layouts as 8-bit
// grayscale or 16-bit grayscale with alpha. Rows are written bottom-up and a
// TGA 2.0 footer is appended.
func EncodeWithOptions(img *pixel.Image, opts *WriteOptions) ([]byte, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	compress := opts != nil && opts.Compress

	width, height := img.Width(), img.Height()
	if width > 0xffff || height > 0xffff {
		return nil, fmt.Errorf("%w: %dx%d exceeds 65535", ErrInvalidDimensions, width, height)
	}

	h := Header{
		ImageType: TypeTrueColor,
		Width:     uint16(width),  //nolint:gosec // bounded above
		Height:    uint16(height), //nolint:gosec // bounded above
	}

	format := img.Format()
	switch format {
	case pixel.FormatRGBA8888, pixel.FormatBGRA8888:
		h.PixelDepth = 32
		h.Descriptor = 8
	case pixel.FormatRGB888, pixel.FormatBGR888:
		h.PixelDepth = 24
	case pixel.FormatGray8:
		h.ImageType = TypeGrayscale
		h.PixelDepth = 8
	case pixel.FormatGrayAlpha88:
		h.ImageType = TypeGrayscale
		h.PixelDepth = 16
		h.Descriptor = 8
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, format)
	}
	if compress {
		h.ImageType += 8
	}

	bpp := h.bytesPerPixel()
	var buf bytes.Buffer
	buf.Grow(HeaderSize + width*height*bpp + footerSize)
	writeHeader(&buf, &h)

	row := make([]byte, width*bpp)
	for y := height - 1; y >= 0; y-- {
		storeRow(row, img, y)
		if compress {
			encodeRLERow(&buf, row, bpp)
		} else {
			buf.Write(row)
		}
	}

	// Extension and developer area offsets are zero.
	var footer [8]byte
	buf.Write(footer[:])
	buf.WriteString(FooterSignature)

	logging.Logger().Debug("tga encoded",
		"type", h.ImageType.String(),
		"width", width,
		"height", height,
		"bytes", buf.Len())

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, h *Header) {
	var b [HeaderSize]byte
	b[0] = h.IDLength
	b[1] = h.ColorMapType
	b[2] = byte(h.ImageType)
	binary.LittleEndian.PutUint16(b[3:], h.ColorMapOrigin)
	binary.LittleEndian.PutUint16(b[5:], h.ColorMapLength)
	b[7] = h.ColorMapDepth
	binary.LittleEndian.PutUint16(b[8:], h.XOrigin)
	binary.LittleEndian.PutUint16(b[10:], h.YOrigin)
	binary.LittleEndian.PutUint16(b[12:], h.Width)
	binary.LittleEndian.PutUint16(b[14:], h.Height)
	b[16] = h.PixelDepth
	b[17] = h.Descriptor
	buf.Write(b[:])
}

// storeRow converts row y of img into stored TGA byte order.
func storeRow(dst []byte, img *pixel.Image, y int) {
	src := img.Pix()[y*img.Stride() : (y+1)*img.Stride()]
	format := img.Format()
	if format == pixel.FormatBGRA8888 || format == pixel.FormatBGR888 ||
		format == pixel.FormatGray8 || format == pixel.FormatGrayAlpha88 {
		copy(dst, src)
		return
	}

	bpp := format.BytesPerPixel()
	for i := 0; i+bpp <= len(src); i += bpp {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		if bpp == 4 {
			dst[i+3] = src[i+3]
		}
	}
}
