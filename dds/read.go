package dds

import (
	"fmt"
	"image"
	"image/color"

	"github.com/woozymasta/bcn"

	"github.com/woozymasta/pixcodec/internal/binread"
	"github.com/woozymasta/pixcodec/internal/logging"
	"github.com/woozymasta/pixcodec/pixel"
)

// ReadOptions configures DDS decoding.
type ReadOptions struct {
	// DecodeOptions are passed to the BCn decoder (e.g. Workers).
	DecodeOptions *bcn.DecodeOptions
}

// Decode decodes the base level of a DDS or EDDS file.
func Decode(data []byte) (*pixel.Image, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions decodes the base level of a DDS or EDDS file.
// Nil opts uses default decoding (no DecodeOptions passed to bcn).
func DecodeWithOptions(data []byte, opts *ReadOptions) (*pixel.Image, error) {
	header, dx10, dataOffset, err := readHeaders(data)
	if err != nil {
		return nil, err
	}

	sf, err := detectFormat(header, dx10)
	if err != nil {
		return nil, decodeError("pixel format", pixelFormatStart, err)
	}

	width, height := int(header.Width), int(header.Height)
	levels := declaredLevels(header)
	if int(header.MipMapCount) > fullChainLength(width, height) {
		logging.Logger().Warn("dds mip count exceeds dimensions",
			"declared", header.MipMapCount,
			"levels", levels,
			"width", width,
			"height", height)
	}

	payload := data[dataOffset:]
	enfusion := isEnfusion(header, payload)

	var level0 []byte
	if enfusion {
		level0, err = readLargestMipFromBlocks(payload, sf, width, height, levels)
		if err != nil {
			logging.Logger().Debug("edds block table unreadable, trying single block", "error", err)
			level0, err = readLegacySingleBlock(payload, sf, width, height)
		}
		if err != nil && !hasEnfusionMarker(header) {
			// Surface bytes that merely start with a block magic.
			logging.Logger().Debug("edds blocks unreadable, reading plain surface", "error", err)
			enfusion = false
			level0, err = readBaseLevel(payload, sf, width, height, levels)
		}
		if err != nil {
			return nil, decodeError("block data", dataOffset, err)
		}
	} else {
		level0, err = readBaseLevel(payload, sf, width, height, levels)
		if err != nil {
			return nil, decodeError("surface data", dataOffset, err)
		}
	}

	img, err := decodeSurface(level0, sf, width, height, opts)
	if err != nil {
		return nil, decodeError("surface data", dataOffset, err)
	}

	logging.Logger().Debug("dds decoded",
		"format", sf.String(),
		"width", width,
		"height", height,
		"mipmaps", levels,
		"enfusion", enfusion)

	return img, nil
}

// readBaseLevel returns level 0 of an uncompressed-container DDS. A short
// mip chain is tolerated; a short base level is not.
func readBaseLevel(payload []byte, sf surface, width, height, levels int) ([]byte, error) {
	size, err := sf.dataLength(width, height)
	if err != nil {
		return nil, err
	}
	if len(payload) < size {
		return nil, fmt.Errorf("%w: base level needs %d bytes, have %d", ErrTruncated, size, len(payload))
	}
	if levels > 1 {
		if want, err := chainLength(sf, width, height, levels); err == nil && len(payload) < want {
			logging.Logger().Warn("dds mip chain truncated",
				"format", sf.String(),
				"levels", levels,
				"want", want,
				"have", len(payload))
		}
	}
	return payload[:size], nil
}

// readLargestMipFromBlocks reads the largest mipmap from an EDDS block table.
// Blocks are stored smallest level first, so the base level is the last one.
func readLargestMipFromBlocks(payload []byte, sf surface, width, height, mipMapCount int) ([]byte, error) {
	r := binread.NewLittleEndian(payload)
	table, err := readBlockTable(r, mipMapCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadBlockTable, err)
	}

	last := len(table) - 1
	for i := 0; i < last; i++ {
		if err := r.Skip(int(table[i].Size)); err != nil {
			return nil, fmt.Errorf("%w: mipmap %d: %v", ErrSkipBlockBody, mipMapCount-1-i, err)
		}
	}

	block, err := readBlockBody(r, table[last])
	if err != nil {
		return nil, fmt.Errorf("%w: mipmap 0: %v", ErrReadBlockBody, err)
	}

	expectedSize, err := sf.dataLength(width, height)
	if err != nil {
		return nil, err
	}

	decompressed, err := decompressBlock(block, expectedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: mipmap 0: %v", ErrDecompressBlock, err)
	}
	if len(decompressed) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrLargestMipSizeMismatch, expectedSize, len(decompressed))
	}

	return decompressed, nil
}

// readLegacySingleBlock handles older EDDS files that store one payload blob
// instead of a block table. The blob is tried as an LZ4 chunk stream and
// accepted as raw data when inflating fails but its size already matches.
func readLegacySingleBlock(payload []byte, sf surface, width, height int) ([]byte, error) {
	expectedSize, err := sf.dataLength(width, height)
	if err != nil {
		return nil, err
	}

	size, err := i32FromInt(len(payload))
	if err != nil {
		return nil, err
	}

	block := &Block{Magic: BlockMagicLZ4, Size: size, Data: payload}
	decompressed, err := decompressBlock(block, expectedSize)
	if err == nil {
		return decompressed, nil
	}

	if len(payload) == expectedSize {
		return payload, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrParseSingleBlock, err)
}

func decodeSurface(level0 []byte, sf surface, width, height int, opts *ReadOptions) (*pixel.Image, error) {
	if sf.masks != nil {
		return sf.masks.decode(level0, width, height)
	}

	decOpts := (*bcn.DecodeOptions)(nil)
	if opts != nil {
		decOpts = opts.DecodeOptions
	}
	decoded, err := bcn.DecodeImageWithOptions(level0, width, height, sf.bcn, decOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	return fromImage(decoded, width, height)
}

// fromImage copies a decoded image into an RGBA8888 pixel.Image.
func fromImage(src image.Image, width, height int) (*pixel.Image, error) {
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect == image.Rect(0, 0, width, height) &&
		nrgba.Stride == width*4 && len(nrgba.Pix) == width*height*4 {
		return pixel.New(width, height, pixel.FormatRGBA8888, nrgba.Pix)
	}

	img, err := pixel.Alloc(width, height, pixel.FormatRGBA8888)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	for y := 0; y < height && b.Min.Y+y < b.Max.Y; y++ {
		for x := 0; x < width && b.Min.X+x < b.Max.X; x++ {
			c, _ := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}
