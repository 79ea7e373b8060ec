// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pixcodec

package dds

const (
	maxInt32 = int(^uint32(0) >> 1)
	maxInt   = int(^uint(0) >> 1)
)

// i32FromInt converts an int to an int32.
func i32FromInt(n int) (int32, error) {
	if n < 0 || n > maxInt32 {
		return 0, ErrSizeOverflow
	}

	return int32(n), nil
}

// mulInt multiplies non-negative factors, failing on overflow.
func mulInt(factors ...int) (int, error) {
	product := 1
	for _, f := range factors {
		if f < 0 {
			return 0, ErrSizeOverflow
		}
		if f != 0 && product > maxInt/f {
			return 0, ErrSizeOverflow
		}
		product *= f
	}

	return product, nil
}
