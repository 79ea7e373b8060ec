package tga

import (
	"bytes"
	"fmt"
)

const (
	rlePacketRun = 0x80
	rleMaxCount  = 128
)

// decodeRLE expands run-length packets until pixelCount pixels of bpp bytes
// are produced. It returns the expanded data and the number of input bytes
// consumed.
func decodeRLE(src []byte, pixelCount, bpp int) ([]byte, int, error) {
	// Every packet takes at least 1+bpp bytes and yields at most rleMaxCount pixels.
	if pixelCount > rleMaxCount*(len(src)/(1+bpp)) {
		return nil, 0, fmt.Errorf("%w: %d bytes cannot hold %d pixels", ErrTruncated, len(src), pixelCount)
	}

	out := make([]byte, pixelCount*bpp)
	outIdx := 0
	in := 0

	for outIdx < len(out) {
		if in >= len(src) {
			return nil, in, fmt.Errorf("%w: RLE stream ends after %d of %d pixels", ErrTruncated, outIdx/bpp, pixelCount)
		}
		packet := src[in]
		in++
		count := int(packet&^rlePacketRun) + 1
		n := count * bpp
		if n > len(out)-outIdx {
			// Packets crossing the end of the image are clamped, like most readers do.
			n = len(out) - outIdx
			count = n / bpp
		}

		if packet&rlePacketRun != 0 {
			if len(src)-in < bpp {
				return nil, in, fmt.Errorf("%w: run packet at offset %d", ErrTruncated, in-1)
			}
			value := src[in : in+bpp]
			in += bpp
			for i := 0; i < count; i++ {
				copy(out[outIdx:], value)
				outIdx += bpp
			}
			continue
		}

		if len(src)-in < n {
			return nil, in, fmt.Errorf("%w: raw packet at offset %d needs %d bytes, have %d", ErrTruncated, in-1, n, len(src)-in)
		}
		copy(out[outIdx:], src[in:in+n])
		in += n
		outIdx += n
	}

	return out, in, nil
}

// encodeRLERow appends one scanline as run-length packets. Runs of two or
// more identical pixels become run packets; everything else is grouped into
// raw packets. Packets never exceed 128 pixels and never cross rows.
func encodeRLERow(dst *bytes.Buffer, row []byte, bpp int) {
	n := len(row) / bpp
	px := func(i int) []byte { return row[i*bpp : (i+1)*bpp] }
	same := func(a, b int) bool { return bytes.Equal(px(a), px(b)) }

	for i := 0; i < n; {
		run := 1
		for i+run < n && run < rleMaxCount && same(i, i+run) {
			run++
		}
		if run >= 2 {
			dst.WriteByte(rlePacketRun | byte(run-1))
			dst.Write(px(i))
			i += run
			continue
		}

		count := 0
		for j := i; j < n && count < rleMaxCount; j++ {
			if j+1 < n && same(j, j+1) {
				break
			}
			count++
		}
		dst.WriteByte(byte(count - 1))
		dst.Write(row[i*bpp : (i+count)*bpp])
		i += count
	}
}
