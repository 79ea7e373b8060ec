package dds

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/bcn"
)

// testHeader builds a DDS header for the given bcn format.
func testHeader(t testing.TB, width, height, mipMapCount int, format bcn.Format) *bcn.DDSHeader {
	t.Helper()

	flags := uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat)
	caps := uint32(bcn.DDSCapsTexture)
	if mipMapCount > 1 {
		flags |= bcn.DDSFlagMipmapCount
		caps |= bcn.DDSCapsComplex | bcn.DDSCapsMipmap
	}

	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       flags,
		Height:      uint32(height),
		Width:       uint32(width),
		Depth:       1,
		MipMapCount: uint32(mipMapCount),
		Caps:        caps,
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize

	fourCC := func(s string) {
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = makeFourCC(s[0], s[1], s[2], s[3])
	}
	rgba := func(r, g, b uint32) {
		hdr.Flags |= bcn.DDSFlagPitch
		hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
		hdr.PixelFormat.RGBBitCount = 32
		hdr.PixelFormat.RBitMask = r
		hdr.PixelFormat.GBitMask = g
		hdr.PixelFormat.BBitMask = b
		hdr.PixelFormat.ABitMask = 0xff000000
		hdr.PitchOrLinearSize = uint32(width * 4)
	}

	switch format {
	case bcn.FormatDXT1:
		fourCC("DXT1")
	case bcn.FormatDXT3:
		fourCC("DXT3")
	case bcn.FormatDXT5:
		fourCC("DXT5")
	case bcn.FormatBC4:
		fourCC("ATI1")
	case bcn.FormatBC5:
		fourCC("ATI2")
	case bcn.FormatRGBA8:
		rgba(0x000000ff, 0x0000ff00, 0x00ff0000)
	case bcn.FormatBGRA8:
		rgba(0x00ff0000, 0x0000ff00, 0x000000ff)
	default:
		t.Fatalf("no test header for %v", format)
	}

	return hdr
}

// maskHeader builds a header for an uncompressed bit-mask surface.
func maskHeader(width, height int, flags, bitCount, r, g, b, a uint32) *bcn.DDSHeader {
	hdr := &bcn.DDSHeader{
		Size:   bcn.DDSHeaderSize,
		Flags:  uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat),
		Height: uint32(height),
		Width:  uint32(width),
		Caps:   uint32(bcn.DDSCapsTexture),
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize
	hdr.PixelFormat.Flags = flags
	hdr.PixelFormat.RGBBitCount = bitCount
	hdr.PixelFormat.RBitMask = r
	hdr.PixelFormat.GBitMask = g
	hdr.PixelFormat.BBitMask = b
	hdr.PixelFormat.ABitMask = a
	return hdr
}

// buildDDS serialises a plain DDS file with the given levels appended.
func buildDDS(t testing.TB, hdr *bcn.DDSHeader, levels ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := bcn.WriteDDSMagic(&buf); err != nil {
		t.Fatalf("WriteDDSMagic: %v", err)
	}
	if err := bcn.WriteDDSHeader(&buf, hdr); err != nil {
		t.Fatalf("WriteDDSHeader: %v", err)
	}
	for _, level := range levels {
		buf.Write(level)
	}
	return buf.Bytes()
}

// buildDX10 serialises a DDS file with a DX10 extension header.
func buildDX10(t testing.TB, width, height int, dxgiFormat uint32, level []byte) []byte {
	t.Helper()

	hdr := testHeader(t, width, height, 1, bcn.FormatDXT1)
	hdr.PixelFormat.FourCC = makeFourCC('D', 'X', '1', '0')

	var ext bytes.Buffer
	// dxgiFormat, resourceDimension (2D), miscFlag, arraySize, miscFlags2.
	for _, v := range []uint32{dxgiFormat, 3, 0, 1, 0} {
		_ = binary.Write(&ext, binary.LittleEndian, v)
	}
	return buildDDS(t, hdr, ext.Bytes(), level)
}

// buildEDDS serialises an EDDS file. mipmaps are ordered largest first and
// stored smallest first, each as a COPY block or an LZ4 chunk stream.
func buildEDDS(t testing.TB, format bcn.Format, width, height int, mipmaps [][]byte, compress bool) []byte {
	t.Helper()

	hdr := testHeader(t, width, height, len(mipmaps), format)
	hdr.Reserved1[1] = enfusionMarker

	blocks := make([]*Block, len(mipmaps))
	for i, mip := range mipmaps {
		if compress {
			blocks[i] = compressBlock(t, mip)
		} else {
			blocks[i] = &Block{Magic: BlockMagicCOPY, Size: int32(len(mip)), Data: mip}
		}
	}

	var body bytes.Buffer
	for i := len(blocks) - 1; i >= 0; i-- {
		body.WriteString(blocks[i].Magic)
		_ = binary.Write(&body, binary.LittleEndian, blocks[i].Size)
	}
	for i := len(blocks) - 1; i >= 0; i-- {
		writeBlockData(&body, blocks[i])
	}

	return buildDDS(t, hdr, body.Bytes())
}

func writeBlockData(buf *bytes.Buffer, block *Block) {
	if block.Magic == BlockMagicLZ4 {
		_ = binary.Write(buf, binary.LittleEndian, block.UncompressedSize)
	}
	buf.Write(block.Data)
}

// compressBlock encodes data as an LZ4 chunk stream, falling back to COPY for
// small or incompressible input.
func compressBlock(t testing.TB, data []byte) *Block {
	t.Helper()

	copyBlock := &Block{Magic: BlockMagicCOPY, Size: int32(len(data)), Data: data}
	if len(data) < 1024 {
		return copyBlock
	}

	var stream bytes.Buffer
	scratch := make([]byte, lz4.CompressBlockBound(ChunkSize))
	for i := 0; i < len(data); i += ChunkSize {
		end := min(i+ChunkSize, len(data))
		n, err := lz4.CompressBlockHC(data[i:end], scratch, 0, nil, nil)
		if err != nil {
			t.Fatalf("CompressBlockHC: %v", err)
		}
		if n == 0 {
			return copyBlock
		}

		flags := byte(0)
		if end == len(data) {
			flags = chunkLast
		}
		stream.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), flags})
		stream.Write(scratch[:n])
	}

	return &Block{
		Magic:            BlockMagicLZ4,
		Size:             int32(4 + stream.Len()),
		UncompressedSize: int32(len(data)),
		Data:             stream.Bytes(),
	}
}

// dxt1Block returns one 4x4 DXT1 block with all indices set to index.
func dxt1Block(color0, color1 uint16, index byte) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:], color0)
	binary.LittleEndian.PutUint16(b[2:], color1)
	row := index | index<<2 | index<<4 | index<<6
	for i := 4; i < 8; i++ {
		b[i] = row
	}
	return b
}

// patternBGRA returns width*height BGRA pixels with a compressible pattern.
func patternBGRA(width, height int) []byte {
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := out[(y*width+x)*4:]
			p[0] = byte(x / 8)
			p[1] = byte(y / 8)
			p[2] = byte((x + y) / 16)
			p[3] = 0xff
		}
	}
	return out
}
