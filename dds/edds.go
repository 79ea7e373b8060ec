package dds

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/woozymasta/pixcodec/internal/binread"
)

const (
	// BlockMagicCOPY marks an uncompressed block.
	BlockMagicCOPY = "COPY"
	// BlockMagicLZ4 marks an LZ4-compressed block.
	BlockMagicLZ4 = "LZ4 "

	// ChunkSize is the uncompressed size of one LZ4 chunk in an EDDS block.
	ChunkSize = 64 * 1024

	chunkLast      = 0x80
	dictionarySize = 64 * 1024
	// maxLZ4Ratio bounds how many output bytes one LZ4 input byte can yield.
	maxLZ4Ratio = 255
)

// Block is one EDDS mip level body as stored in the file.
type Block struct {
	Magic            string
	Data             []byte
	Size             int32
	UncompressedSize int32
}

type blockHeader struct {
	Magic string
	Size  int32
}

// readBlockTable reads one table entry per mip level, smallest level first.
func readBlockTable(r *binread.Reader, mipMapCount int) ([]blockHeader, error) {
	hdrs := make([]blockHeader, 0, mipMapCount)
	for i := 0; i < mipMapCount; i++ {
		magic, err := r.FourCC()
		if err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockTableMagicRead, i, err)
		}
		size, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockTableSizeRead, i, err)
		}

		if magic != BlockMagicCOPY && magic != BlockMagicLZ4 {
			return nil, fmt.Errorf("%w: %d: %q", ErrBlockTableUnknownMagic, i, magic)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: %d: %d", ErrBlockTableInvalidSize, i, size)
		}

		hdrs = append(hdrs, blockHeader{Magic: magic, Size: size})
	}

	return hdrs, nil
}

// readBlockBody returns the body described by h without copying it. LZ4
// bodies start with the uncompressed size, which is moved into the block.
func readBlockBody(r *binread.Reader, h blockHeader) (*Block, error) {
	data, err := r.Bytes(int(h.Size))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBlockBodyRead, h.Magic, err)
	}

	block := &Block{Magic: h.Magic, Size: h.Size, Data: data}
	if h.Magic == BlockMagicLZ4 && len(data) >= 8 {
		br := binread.NewLittleEndian(data)
		size, _ := br.I32()
		first := int(data[4]) | int(data[5])<<8 | int(data[6])<<16
		if size > 0 && first > 0 && first <= len(data)-8 {
			block.UncompressedSize = size
			block.Data = data[4:]
		}
	}

	return block, nil
}

// decompressBlock inflates an EDDS block into a freshly allocated buffer.
func decompressBlock(block *Block, expectedUncompressedSize int) ([]byte, error) {
	switch block.Magic {
	case BlockMagicCOPY:
		if len(block.Data) != expectedUncompressedSize {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrCopySizeMismatch, expectedUncompressedSize, len(block.Data))
		}
		out := make([]byte, len(block.Data))
		copy(out, block.Data)
		return out, nil
	case BlockMagicLZ4:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockMagic, block.Magic)
	}

	targetSize := expectedUncompressedSize
	data := block.Data
	if block.UncompressedSize > 0 {
		targetSize = int(block.UncompressedSize)
	} else if n, ok := sizePrefix(data, expectedUncompressedSize); ok {
		targetSize = n
		data = data[4:]
	}
	if targetSize <= 0 || targetSize != expectedUncompressedSize {
		return nil, fmt.Errorf("%w: %d, expected %d", ErrInvalidTargetSize, targetSize, expectedUncompressedSize)
	}
	if targetSize/maxLZ4Ratio > len(data) {
		return nil, fmt.Errorf("%w: %d bytes cannot inflate to %d", ErrInvalidTargetSize, len(data), targetSize)
	}

	return inflateChunks(data, targetSize)
}

// sizePrefix detects the 32-bit uncompressed size that may precede the chunk
// stream of a legacy single-block payload.
func sizePrefix(data []byte, expected int) (int, bool) {
	if len(data) < 8 {
		return 0, false
	}
	r := binread.NewLittleEndian(data)
	size, _ := r.U32()
	peek := int(size)
	first := int(data[4]) | int(data[5])<<8 | int(data[6])<<16
	if peek == expected && first > 0 && first < 1<<20 {
		return peek, true
	}
	return 0, false
}

// inflateChunks decodes a sequence of LZ4 chunks. Each chunk has a 24-bit
// compressed length, a flag byte whose high bit marks the last chunk, and is
// decoded against the previous 64 KiB of output.
func inflateChunks(data []byte, targetSize int) ([]byte, error) {
	target := make([]byte, targetSize)
	outIdx := 0
	r := binread.NewLittleEndian(data)

	for {
		if r.Len() < 4 {
			return nil, fmt.Errorf("%w: need 4 bytes header, have %d", ErrChunkStreamTruncated, r.Len())
		}
		word, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkHeaderRead, err)
		}
		cSize := int(word & 0xffffff)
		flags := byte(word >> 24)
		if flags&^chunkLast != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownLZ4Flags, flags)
		}
		if cSize <= 0 || cSize > r.Len() {
			return nil, fmt.Errorf("%w: %d (remaining %d)", ErrInvalidChunkSize, cSize, r.Len())
		}
		compressed, err := r.Bytes(cSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkDataRead, err)
		}

		remaining := targetSize - outIdx
		if remaining <= 0 {
			return nil, ErrDecodeOverrun
		}
		want := min(ChunkSize, remaining)

		dictStart := max(0, outIdx-dictionarySize)
		n, err := lz4.UncompressBlockWithDict(compressed, target[outIdx:outIdx+want], target[dictStart:outIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		outIdx += n

		if flags&chunkLast != 0 {
			break
		}
	}

	if outIdx != targetSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, targetSize, outIdx)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after decode", ErrBlockLengthMismatch, r.Len())
	}

	return target, nil
}
