// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pixcodec

package pixel

const (
	maxInt    = int(^uint(0) >> 1)
	maxUint32 = uint64(^uint32(0))
)

// BufferLen returns width*height*bpp, failing on overflow or bad geometry.
func BufferLen(width, height int, format Format) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, ErrInvalidDimensions
	}
	if uint64(width) > maxUint32 || uint64(height) > maxUint32 {
		return 0, ErrInvalidDimensions
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return 0, ErrInvalidFormat
	}

	row, err := mulInt(width, bpp)
	if err != nil {
		return 0, err
	}

	return mulInt(row, height)
}

// IntFromU32 converts a uint32 to an int.
func IntFromU32(n uint32) (int, error) {
	if uint64(n) > uint64(maxInt) {
		return 0, ErrSizeOverflow
	}

	return int(n), nil
}

// IntFromU64 converts a uint64 to an int.
func IntFromU64(n uint64) (int, error) {
	if n > uint64(maxInt) {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return int(n), nil
}

func mulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrSizeOverflow
	}
	if a != 0 && b > maxInt/a {
		return 0, ErrSizeOverflow
	}

	return a * b, nil
}
