package psd

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"

	"github.com/woozymasta/pixcodec/internal/binread"
	"github.com/woozymasta/pixcodec/pixel"
)

const (
	// A two-byte PackBits run yields at most 128 bytes.
	maxPackBitsRatio = 64
	// Deflate cannot exceed roughly 1032:1.
	maxDeflateRatio = 1032
)

// mulInt multiplies non-negative ints, failing on overflow.
func mulInt(a, b int) (int, error) {
	if a < 0 || b < 0 || (a != 0 && b > math.MaxInt/a) {
		return 0, pixel.ErrSizeOverflow
	}
	return a * b, nil
}

// unpackBits expands one PackBits scanline into dst, which must be filled
// exactly. A header n in 0..127 copies n+1 literal bytes, -127..-1 repeats
// the next byte 1-n times, and -128 is a no-op.
func unpackBits(dst, src []byte) error {
	out, in := 0, 0
	for out < len(dst) {
		if in >= len(src) {
			return fmt.Errorf("%w: row ends after %d of %d bytes", ErrRLE, out, len(dst))
		}
		n := int(int8(src[in]))
		in++

		switch {
		case n >= 0:
			count := n + 1
			if in+count > len(src) {
				return fmt.Errorf("%w: literal of %d bytes past end of row data", ErrRLE, count)
			}
			if out+count > len(dst) {
				return fmt.Errorf("%w: literal overruns row by %d bytes", ErrRLE, out+count-len(dst))
			}
			copy(dst[out:], src[in:in+count])
			in += count
			out += count
		case n == -128:
		default:
			count := 1 - n
			if in >= len(src) {
				return fmt.Errorf("%w: run without value", ErrRLE)
			}
			if out+count > len(dst) {
				return fmt.Errorf("%w: run overruns row by %d bytes", ErrRLE, out+count-len(dst))
			}
			v := src[in]
			in++
			for i := 0; i < count; i++ {
				dst[out+i] = v
			}
			out += count
		}
	}
	return nil
}

// readRowCounts reads the per-row byte counts that precede PackBits data.
// The counts must fit in what remains of r.
func readRowCounts(r *binread.Reader, rows int, psb bool) ([]int, error) {
	width := 2
	if psb {
		width = 4
	}
	if rows > r.Len()/width {
		return nil, fmt.Errorf("%w: row count table of %d rows, %d bytes remain", ErrTruncated, rows, r.Len())
	}

	counts := make([]int, rows)
	sum := 0
	for i := range counts {
		var n int
		if psb {
			v, _ := r.U32()
			n, _ = pixel.IntFromU32(v)
		} else {
			v, _ := r.U16()
			n = int(v)
		}
		counts[i] = n
		sum += n
		if sum > r.Len() {
			return nil, fmt.Errorf("%w: row counts need %d bytes, %d remain", ErrTruncated, sum, r.Len())
		}
	}
	return counts, nil
}

// unpackRows expands len(counts) PackBits rows of rowBytes each from r.
func unpackRows(r *binread.Reader, counts []int, rowBytes int) ([]byte, error) {
	for i, n := range counts {
		if rowBytes > maxPackBitsRatio*n {
			return nil, fmt.Errorf("%w: row %d: %d bytes cannot expand to %d", ErrRLE, i, n, rowBytes)
		}
	}

	out := make([]byte, len(counts)*rowBytes)
	for i, n := range counts {
		src, err := r.Bytes(n)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrTruncated, i, err)
		}
		if err := unpackBits(out[i*rowBytes:(i+1)*rowBytes], src); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return out, nil
}

// inflate decompresses a zlib stream that must yield exactly size bytes.
func inflate(src []byte, size int) ([]byte, error) {
	if size/maxDeflateRatio > len(src) {
		return nil, fmt.Errorf("%w: %d bytes cannot inflate to %d", ErrInflate, len(src), size)
	}

	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInflate, err)
	}
	defer func() { _ = zr.Close() }()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: want %d bytes: %v", ErrInflate, size, err)
	}
	return out, nil
}

// unpredict undoes the horizontal delta filter applied before zip
// compression. Samples are big-endian when depth is 16.
func unpredict(buf []byte, width, rows, depth int) {
	switch depth {
	case 8:
		for y := 0; y < rows; y++ {
			row := buf[y*width : (y+1)*width]
			for x := 1; x < width; x++ {
				row[x] += row[x-1]
			}
		}
	case 16:
		for y := 0; y < rows; y++ {
			row := buf[y*width*2 : (y+1)*width*2]
			prev := uint16(row[0])<<8 | uint16(row[1])
			for x := 1; x < width; x++ {
				v := uint16(row[2*x])<<8 | uint16(row[2*x+1])
				v += prev
				row[2*x] = byte(v >> 8)
				row[2*x+1] = byte(v)
				prev = v
			}
		}
	}
}

// planeSpec describes planes of stored samples that share one compression
// tag and one row count table.
type planeSpec struct {
	planes int
	width  int
	height int
	depth  int
	psb    bool
}

func (p planeSpec) rowBytes() (int, error) {
	bits, err := mulInt(p.width, p.depth)
	if err != nil {
		return 0, err
	}
	return bits/8 + min(bits%8, 1), nil
}

// sizes returns the row, plane and total byte counts of p.
func (p planeSpec) sizes() (row, plane, total int, err error) {
	if row, err = p.rowBytes(); err != nil {
		return 0, 0, 0, err
	}
	if plane, err = mulInt(row, p.height); err != nil {
		return 0, 0, 0, err
	}
	if total, err = mulInt(plane, p.planes); err != nil {
		return 0, 0, 0, err
	}
	return row, plane, total, nil
}

// decodePlanes reads p.planes stored planes compressed with c from r.
func decodePlanes(r *binread.Reader, c Compression, p planeSpec) ([][]byte, error) {
	rowBytes, size, total, err := p.sizes()
	if err != nil {
		return nil, fmt.Errorf("%dx%d plane: %w", p.width, p.height, err)
	}
	rows, err := mulInt(p.planes, p.height)
	if err != nil {
		return nil, fmt.Errorf("%dx%d plane: %w", p.width, p.height, err)
	}

	var flat []byte
	switch c {
	case CompressionRaw:
		src, err := r.Bytes(total)
		if err != nil {
			return nil, fmt.Errorf("%w: raw data: %v", ErrTruncated, err)
		}
		flat = make([]byte, total)
		copy(flat, src)
	case CompressionRLE:
		counts, err := readRowCounts(r, rows, p.psb)
		if err != nil {
			return nil, err
		}
		flat, err = unpackRows(r, counts, rowBytes)
		if err != nil {
			return nil, err
		}
	case CompressionZip, CompressionZipPrediction:
		flat, err = inflate(r.Rest(), total)
		if err != nil {
			return nil, err
		}
		if c == CompressionZipPrediction {
			if p.depth == 1 {
				return nil, fmt.Errorf("%w: prediction with 1-bit samples", ErrUnknownCompression)
			}
			unpredict(flat, p.width, rows, p.depth)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint16(c))
	}

	planes := make([][]byte, p.planes)
	for i := range planes {
		planes[i] = flat[i*size : (i+1)*size]
	}
	return planes, nil
}
