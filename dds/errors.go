package dds

import (
	"errors"

	"github.com/woozymasta/pixcodec/pixel"
)

var (
	// ErrTruncated indicates the data ends before a required structure.
	ErrTruncated = errors.New("truncated data")
	// ErrInvalidMagic indicates the data does not start with "DDS ".
	ErrInvalidMagic = errors.New("invalid DDS magic")
	// ErrInvalidHeader indicates header size fields do not match the DDS layout.
	ErrInvalidHeader = errors.New("invalid DDS header")
	// ErrInvalidDimensions indicates a zero width or height.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrUnknownFormat indicates an unrecognised FourCC, DXGI code or pixel format.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnsupportedFormat indicates a recognised format that is not decoded.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidMasks indicates an uncompressed bit layout that cannot be decoded.
	ErrInvalidMasks = errors.New("invalid channel masks")
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrDDSHeaderRead indicates DDS header read failed.
	ErrDDSHeaderRead = errors.New("reading DDS header failed")
	// ErrDDSDX10Read indicates DDS DX10 header read failed.
	ErrDDSDX10Read = errors.New("reading DDS DX10 header failed")
	// ErrDecodeImage indicates block decoding failed.
	ErrDecodeImage = errors.New("decode image failed")

	// ErrLZ4Decode indicates LZ4 decode failed.
	ErrLZ4Decode = errors.New("LZ4 decode failed")
	// ErrCopySizeMismatch indicates COPY block data size mismatch.
	ErrCopySizeMismatch = errors.New("COPY block size mismatch")
	// ErrUnknownBlockMagic indicates an unknown block magic.
	ErrUnknownBlockMagic = errors.New("unknown block magic")
	// ErrInvalidTargetSize indicates invalid decoded target size.
	ErrInvalidTargetSize = errors.New("invalid target size")
	// ErrChunkStreamTruncated indicates LZ4 chunk stream is truncated.
	ErrChunkStreamTruncated = errors.New("LZ4 chunk-stream truncated")
	// ErrUnknownLZ4Flags indicates unknown LZ4 chunk flags.
	ErrUnknownLZ4Flags = errors.New("unknown LZ4 flags")
	// ErrInvalidChunkSize indicates invalid LZ4 chunk size.
	ErrInvalidChunkSize = errors.New("invalid compressed chunk size")
	// ErrDecodeOverrun indicates decoded data overruns target buffer.
	ErrDecodeOverrun = errors.New("decoded LZ4 overruns target buffer")
	// ErrDecodedSizeMismatch indicates decoded size mismatch.
	ErrDecodedSizeMismatch = errors.New("LZ4 decoded size mismatch")
	// ErrBlockLengthMismatch indicates leftover bytes after decode.
	ErrBlockLengthMismatch = errors.New("LZ4 block length mismatch")
	// ErrChunkHeaderRead indicates LZ4 chunk header read failed.
	ErrChunkHeaderRead = errors.New("reading chunk header failed")
	// ErrChunkDataRead indicates LZ4 chunk data read failed.
	ErrChunkDataRead = errors.New("reading chunk data failed")
	// ErrBlockTableMagicRead indicates block table magic read failed.
	ErrBlockTableMagicRead = errors.New("reading block table magic failed")
	// ErrBlockTableSizeRead indicates block table size read failed.
	ErrBlockTableSizeRead = errors.New("reading block table size failed")
	// ErrBlockTableUnknownMagic indicates unknown block magic in table.
	ErrBlockTableUnknownMagic = errors.New("unknown block magic in table")
	// ErrBlockTableInvalidSize indicates invalid size in block table.
	ErrBlockTableInvalidSize = errors.New("invalid block size in table")
	// ErrBlockBodyRead indicates block body read failed.
	ErrBlockBodyRead = errors.New("reading block body failed")
	// ErrReadBlockTable indicates block table read failed.
	ErrReadBlockTable = errors.New("read block table failed")
	// ErrSkipBlockBody indicates skipping block body failed.
	ErrSkipBlockBody = errors.New("skip block body failed")
	// ErrReadBlockBody indicates block body read failed.
	ErrReadBlockBody = errors.New("read block body failed")
	// ErrDecompressBlock indicates block decompression failed.
	ErrDecompressBlock = errors.New("decompress block failed")
	// ErrLargestMipSizeMismatch indicates mismatch in largest mip size.
	ErrLargestMipSizeMismatch = errors.New("largest mip size mismatch")
	// ErrParseSingleBlock indicates failure parsing legacy single block.
	ErrParseSingleBlock = errors.New("failed to parse single block")
)

func decodeError(section string, offset int, err error) error {
	return pixel.NewDecodeError("dds", section, offset, err)
}
