package dds

import "github.com/woozymasta/bcn"

// fullChainLength returns the number of levels in a complete mip chain.
func fullChainLength(width, height int) int {
	count := 1
	for width > 1 || height > 1 {
		count++
		width = max(1, width/2)
		height = max(1, height/2)
	}
	return count
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	return max(1, base>>level)
}

// declaredLevels returns the mip count recorded in the header, clamped to
// what the dimensions allow. Headers that do not flag a mip chain have one
// level.
func declaredLevels(header *bcn.DDSHeader) int {
	levels := 1
	flagged := header.Flags&bcn.DDSFlagMipmapCount != 0 || header.Caps&bcn.DDSCapsMipmap != 0
	if flagged && header.MipMapCount > 0 {
		levels = int(header.MipMapCount)
	}
	return min(levels, fullChainLength(int(header.Width), int(header.Height)))
}

// chainLength returns the bytes needed for the first levels of the chain.
func chainLength(sf surface, width, height, levels int) (int, error) {
	total := 0
	for level := 0; level < levels; level++ {
		size, err := sf.dataLength(mipDimension(width, level), mipDimension(height, level))
		if err != nil {
			return 0, err
		}
		if size > maxInt-total {
			return 0, ErrSizeOverflow
		}
		total += size
	}
	return total, nil
}
