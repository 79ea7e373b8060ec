package dds

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/woozymasta/bcn"

	"github.com/woozymasta/pixcodec/internal/binread"
	"github.com/woozymasta/pixcodec/pixel"
)

const (
	// Magic is the four-byte signature at the start of every DDS file.
	Magic = "DDS "

	magicSize        = 4
	dx10HeaderSize   = 20
	pixelFormatStart = magicSize + 72
)

// enfusionMarker is stored in the second reserved header word of EDDS files.
var enfusionMarker = makeFourCC('E', 'N', 'F', '1')

// Header summarises a DDS file without decoding pixel data.
type Header struct {
	Width       int
	Height      int
	Depth       int
	MipMapCount int
	// FourCC is empty when the pixel format block does not carry one.
	FourCC string
	// DXGIFormat is zero unless a DX10 extension header is present.
	DXGIFormat uint32
	// Format names the stored surface layout.
	Format string
	// Enfusion is set for EDDS files whose mip chain is stored as blocks.
	Enfusion bool
	// DataOffset is the byte offset of the first surface or block table.
	DataOffset int
}

// ReadHeader parses and validates the header of a DDS file.
func ReadHeader(data []byte) (*Header, error) {
	header, dx10, dataOffset, err := readHeaders(data)
	if err != nil {
		return nil, err
	}

	sf, err := detectFormat(header, dx10)
	if err != nil {
		return nil, decodeError("pixel format", pixelFormatStart, err)
	}

	h := &Header{
		Width:       int(header.Width),
		Height:      int(header.Height),
		Depth:       int(header.Depth),
		MipMapCount: int(header.MipMapCount),
		Format:      sf.String(),
		Enfusion:    isEnfusion(header, data[dataOffset:]),
		DataOffset:  dataOffset,
	}
	if header.PixelFormat.Flags&bcn.DDSPFFourCC != 0 {
		h.FourCC = intToFourCC(header.PixelFormat.FourCC)
	}
	if dx10 != nil {
		h.DXGIFormat = dx10.DXGIFormat
	}

	return h, nil
}

// ReadConfig returns the dimensions and color model of a DDS file.
func ReadConfig(data []byte) (image.Config, error) {
	header, dx10, _, err := readHeaders(data)
	if err != nil {
		return image.Config{}, err
	}

	sf, err := detectFormat(header, dx10)
	if err != nil {
		return image.Config{}, decodeError("pixel format", pixelFormatStart, err)
	}

	model := color.Model(color.NRGBAModel)
	if sf.masks != nil {
		model = sf.masks.outputFormat().ColorModel()
	}

	return image.Config{
		Width:      int(header.Width),
		Height:     int(header.Height),
		ColorModel: model,
	}, nil
}

// readHeaders checks lengths and sizes before handing the bytes to bcn, and
// returns the offset of the first byte after the headers.
func readHeaders(data []byte) (*bcn.DDSHeader, *bcn.DDSHeaderDX10, int, error) {
	if len(data) < magicSize {
		return nil, nil, 0, decodeError("magic", 0, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data)))
	}
	if string(data[:magicSize]) != Magic {
		return nil, nil, 0, decodeError("magic", 0, fmt.Errorf("%w: % x", ErrInvalidMagic, data[:magicSize]))
	}
	if len(data) < magicSize+bcn.DDSHeaderSize {
		return nil, nil, 0, decodeError("header", magicSize,
			fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, bcn.DDSHeaderSize, len(data)-magicSize))
	}

	// Both structure size fields must match before the header is decoded.
	le := binread.NewLittleEndian(data)
	_ = le.Seek(magicSize)
	if size, _ := le.U32(); size != bcn.DDSHeaderSize {
		return nil, nil, 0, decodeError("header", magicSize, fmt.Errorf("%w: size field %d", ErrInvalidHeader, size))
	}
	_ = le.Seek(pixelFormatStart)
	if size, _ := le.U32(); size != bcn.DDSPixelFormatSize {
		return nil, nil, 0, decodeError("pixel format", pixelFormatStart,
			fmt.Errorf("%w: pixel format size field %d", ErrInvalidHeader, size))
	}

	r := bytes.NewReader(data)
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return nil, nil, 0, decodeError("header", magicSize, fmt.Errorf("%w: %v", ErrDDSHeaderRead, err))
	}
	if header.Width == 0 || header.Height == 0 {
		return nil, nil, 0, decodeError("header", magicSize,
			fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, header.Width, header.Height))
	}
	if _, err := pixel.BufferLen(int(header.Width), int(header.Height), pixel.FormatRGBA8888); err != nil {
		return nil, nil, 0, decodeError("header", magicSize,
			fmt.Errorf("%w: %dx%d: %v", ErrSizeOverflow, header.Width, header.Height, err))
	}

	offset := magicSize + bcn.DDSHeaderSize
	pf := header.PixelFormat
	if pf.Flags&bcn.DDSPFFourCC != 0 && pf.FourCC == makeFourCC('D', 'X', '1', '0') {
		if len(data) < offset+dx10HeaderSize {
			return nil, nil, 0, decodeError("dx10 header", offset,
				fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, dx10HeaderSize, len(data)-offset))
		}
	}

	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return nil, nil, 0, decodeError("dx10 header", offset, fmt.Errorf("%w: %v", ErrDDSDX10Read, err))
	}
	if dx10 != nil {
		offset += dx10HeaderSize
	}

	return header, dx10, offset, nil
}

// isEnfusion reports whether the payload after the headers is an EDDS block
// table rather than raw surface data.
func isEnfusion(header *bcn.DDSHeader, payload []byte) bool {
	if hasEnfusionMarker(header) {
		return true
	}
	if len(payload) < 4 {
		return false
	}
	magic := string(payload[:4])
	return magic == BlockMagicCOPY || magic == BlockMagicLZ4
}

func hasEnfusionMarker(header *bcn.DDSHeader) bool {
	return header.Reserved1[1] == enfusionMarker
}
