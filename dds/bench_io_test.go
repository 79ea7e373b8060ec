package dds

import (
	"image"
	"image/color"
	"testing"

	"github.com/woozymasta/bcn"
)

// benchImage builds a deterministic image used by decode benchmarks.
func benchImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Deterministic pattern with mixed low/high frequencies.
			img.Set(x, y, color.NRGBA{
				R: uint8((x*7 + y*3) & 0xff),        //nolint:gosec // bounded by mask
				G: uint8((x*13 + y*5) & 0xff),       //nolint:gosec // bounded by mask
				B: uint8((x ^ y ^ (x >> 2)) & 0xff), //nolint:gosec // bounded by mask
				A: 255,
			})
		}
	}
	return img
}

// benchPayloads encodes the full mip chain of img, largest level first.
func benchPayloads(b *testing.B, img image.Image, format bcn.Format) [][]byte {
	b.Helper()

	mips := bcn.GenerateMipmaps(img, false)
	payloads := make([][]byte, len(mips))
	for i, mip := range mips {
		data, _, _, err := bcn.EncodeImageWithOptions(mip, format, &bcn.EncodeOptions{
			QualityLevel: bcn.QualityLevelFast,
		})
		if err != nil {
			b.Fatalf("prepare payloads (mipmap %d): %v", i, err)
		}
		payloads[i] = data
	}

	return payloads
}

func BenchmarkDecodeDXT5(b *testing.B) {
	img := benchImage(1024, 1024)
	payloads := benchPayloads(b, img, bcn.FormatDXT5)
	data := buildDDS(b, testHeader(b, 1024, 1024, len(payloads), bcn.FormatDXT5), payloads...)

	b.ReportAllocs()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decode(data); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkDecodeEDDS(b *testing.B) {
	img := benchImage(1024, 1024)
	payloads := benchPayloads(b, img, bcn.FormatBGRA8)

	b.Run("COPY", func(b *testing.B) {
		data := buildEDDS(b, bcn.FormatBGRA8, 1024, 1024, payloads, false)

		b.ReportAllocs()
		b.SetBytes(int64(len(img.Pix)))
		b.ResetTimer()

		for b.Loop() {
			if _, err := Decode(data); err != nil {
				b.Fatalf("decode (COPY): %v", err)
			}
		}
	})

	b.Run("LZ4", func(b *testing.B) {
		data := buildEDDS(b, bcn.FormatBGRA8, 1024, 1024, payloads, true)

		b.ReportAllocs()
		b.SetBytes(int64(len(img.Pix)))
		b.ResetTimer()

		for b.Loop() {
			if _, err := Decode(data); err != nil {
				b.Fatalf("decode (LZ4): %v", err)
			}
		}
	})
}

func BenchmarkDecodeMasks(b *testing.B) {
	const w, h = 1024, 1024
	hdr := maskHeader(w, h, bcn.DDSPFRGB, 16, 0xf800, 0x07e0, 0x001f, 0)
	level := make([]byte, w*h*2)
	for i := range level {
		level[i] = byte(i * 7)
	}
	data := buildDDS(b, hdr, level)

	b.ReportAllocs()
	b.SetBytes(int64(len(level)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decode(data); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}
