package psd

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"
)

type testChannel struct {
	id ChannelID
	// plane holds stored samples, rowBytes*height.
	plane []byte
}

type testLayer struct {
	rect     image.Rectangle
	channels []testChannel
	comp     Compression
	blend    string
	opacity  uint8
	clipping uint8
	flags    uint8
	name     string
	unicode  string
	section  SectionType
	// tagSection writes an 'lsct' block even for SectionLayer.
	tagSection bool
	mask       *Mask
}

type testDoc struct {
	version   uint16
	channels  int
	width     int
	height    int
	depth     int
	mode      ColorMode
	colorData []byte
	layers    []testLayer
	negative  bool
	// lr16 stores the layer info in a tagged 'Lr16' block.
	lr16 bool
	comp Compression
	// planes are the merged image planes; nil omits the image data.
	planes [][]byte
}

func rgbDoc(width, height int) testDoc {
	return testDoc{version: versionPSD, channels: 3, width: width, height: height, depth: 8, mode: ColorModeRGB}
}

func (d testDoc) build(t testing.TB) []byte {
	t.Helper()

	version := d.version
	if version == 0 {
		version = versionPSD
	}
	psb := version == versionPSB

	b := []byte(Magic)
	b = be16(b, version)
	b = append(b, 0, 0, 0, 0, 0, 0)
	b = be16(b, uint16(d.channels))       //nolint:gosec // test fixtures are small
	b = be32(b, uint32(d.height))         //nolint:gosec // test fixtures are small
	b = be32(b, uint32(d.width))          //nolint:gosec // test fixtures are small
	b = be16(b, uint16(d.depth))          //nolint:gosec // test fixtures are small
	b = be16(b, uint16(d.mode))           //nolint:gosec // test fixtures are small
	b = be32(b, uint32(len(d.colorData))) //nolint:gosec // test fixtures are small
	b = append(b, d.colorData...)
	b = be32(b, 0)

	lm := d.layerAndMask(t, psb)
	b = appendLength(b, len(lm), psb)
	b = append(b, lm...)

	if d.planes != nil {
		b = be16(b, uint16(d.comp))
		b = append(b, encodePlanes(t, d.comp, d.planes, d.width, d.height, d.depth, psb)...)
	}
	return b
}

func (d testDoc) layerAndMask(t testing.TB, psb bool) []byte {
	info := d.layerInfo(t, psb)

	var b []byte
	switch {
	case d.lr16:
		b = appendLength(b, 0, psb)
		b = be32(b, 0)
		b = append(b, "8BIMLr16"...)
		b = appendLength(b, len(info), psb)
		b = append(b, info...)
		for n := len(info); n%4 != 0; n++ {
			b = append(b, 0)
		}
	case info != nil:
		b = appendLength(b, len(info), psb)
		b = append(b, info...)
		b = be32(b, 0)
	}
	return b
}

func (d testDoc) layerInfo(t testing.TB, psb bool) []byte {
	if len(d.layers) == 0 {
		return nil
	}

	count := len(d.layers)
	if d.negative {
		count = -count
	}
	b := be16(nil, uint16(int16(count))) //nolint:gosec // test fixtures are small

	var data []byte
	for _, l := range d.layers {
		encoded := make([][]byte, len(l.channels))
		for i, ch := range l.channels {
			w, h := l.rect.Dx(), l.rect.Dy()
			if ch.id == ChannelUserMask && l.mask != nil {
				w, h = l.mask.Rect.Dx(), l.mask.Rect.Dy()
			}
			body := be16(nil, uint16(l.comp))
			body = append(body, encodePlanes(t, l.comp, [][]byte{ch.plane}, w, h, d.depth, psb)...)
			encoded[i] = body
		}
		b = l.record(b, encoded, psb)
		for _, e := range encoded {
			data = append(data, e...)
		}
	}
	b = append(b, data...)
	if len(b)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func (l testLayer) record(b []byte, encoded [][]byte, psb bool) []byte {
	b = appendRect(b, l.rect)
	b = be16(b, uint16(len(l.channels))) //nolint:gosec // test fixtures are small
	for i, ch := range l.channels {
		b = be16(b, uint16(ch.id)) //nolint:gosec // two's complement
		b = appendLength(b, len(encoded[i]), psb)
	}

	blend := l.blend
	if blend == "" {
		blend = "norm"
	}
	b = append(b, "8BIM"...)
	b = append(b, blend...)
	b = append(b, l.opacity, l.clipping, l.flags, 0)

	extra := l.extra()
	b = be32(b, uint32(len(extra))) //nolint:gosec // test fixtures are small
	return append(b, extra...)
}

func (l testLayer) extra() []byte {
	var e []byte
	if l.mask != nil {
		e = be32(e, 20)
		e = appendRect(e, l.mask.Rect)
		e = append(e, l.mask.DefaultColor, l.mask.Flags, 0, 0)
	} else {
		e = be32(e, 0)
	}
	e = be32(e, 0)

	e = append(e, byte(len(l.name)))
	e = append(e, l.name...)
	for len(e)%4 != 0 {
		e = append(e, 0)
	}

	if l.tagSection || l.section != SectionLayer {
		e = appendTagged(e, "lsct", be32(nil, uint32(l.section)))
	}
	if l.unicode != "" {
		units := utf16.Encode([]rune(l.unicode))
		body := be32(nil, uint32(len(units))) //nolint:gosec // test fixtures are small
		for _, u := range units {
			body = be16(body, u)
		}
		e = appendTagged(e, "luni", body)
	}
	return e
}

func appendTagged(b []byte, key string, body []byte) []byte {
	b = append(b, "8BIM"...)
	b = append(b, key...)
	b = be32(b, uint32(len(body))) //nolint:gosec // test fixtures are small
	return append(b, body...)
}

func appendRect(b []byte, r image.Rectangle) []byte {
	for _, v := range []int{r.Min.Y, r.Min.X, r.Max.Y, r.Max.X} {
		b = be32(b, uint32(int32(v))) //nolint:gosec // two's complement
	}
	return b
}

func appendLength(b []byte, n int, long bool) []byte {
	if long {
		return binary.BigEndian.AppendUint64(b, uint64(n)) //nolint:gosec // non-negative
	}
	return be32(b, uint32(n)) //nolint:gosec // test fixtures are small
}

func be16(b []byte, v uint16) []byte { return binary.BigEndian.AppendUint16(b, v) }

func be32(b []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(b, v) }

// encodePlanes compresses planes the way a writer stores them after the
// compression tag.
func encodePlanes(t testing.TB, c Compression, planes [][]byte, width, height, depth int, psb bool) []byte {
	t.Helper()

	rowBytes := (width*depth + 7) / 8
	var flat []byte
	for _, p := range planes {
		if len(p) != rowBytes*height {
			t.Fatalf("plane has %d bytes, want %d", len(p), rowBytes*height)
		}
		flat = append(flat, p...)
	}

	switch c {
	case CompressionRaw:
		return flat
	case CompressionRLE:
		var counts, body []byte
		for i := 0; i+rowBytes <= len(flat) && rowBytes > 0; i += rowBytes {
			row := packBits(flat[i : i+rowBytes])
			if psb {
				counts = be32(counts, uint32(len(row))) //nolint:gosec // test fixtures are small
			} else {
				counts = be16(counts, uint16(len(row))) //nolint:gosec // test fixtures are small
			}
			body = append(body, row...)
		}
		return append(counts, body...)
	case CompressionZip:
		return deflate(t, flat)
	case CompressionZipPrediction:
		rows := 0
		if rowBytes > 0 {
			rows = len(flat) / rowBytes
		}
		return deflate(t, predict(flat, width, rows, depth))
	}

	t.Fatalf("unknown compression %d", c)
	return nil
}

// packBits encodes one row, using runs for two or more equal bytes.
func packBits(row []byte) []byte {
	var out []byte
	for i := 0; i < len(row); {
		run := 1
		for i+run < len(row) && run < 128 && row[i+run] == row[i] {
			run++
		}
		if run >= 2 {
			out = append(out, byte(int8(1-run)), row[i]) //nolint:gosec // run <= 128
			i += run
			continue
		}

		start := i
		for i < len(row) && i-start < 128 && (i+1 >= len(row) || row[i+1] != row[i]) {
			i++
		}
		out = append(out, byte(i-start-1)) //nolint:gosec // literal <= 128
		out = append(out, row[start:i]...)
	}
	return out
}

func deflate(t testing.TB, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// predict applies the horizontal delta filter, the inverse of unpredict.
func predict(src []byte, width, rows, depth int) []byte {
	buf := append([]byte(nil), src...)
	switch depth {
	case 8:
		for y := 0; y < rows; y++ {
			row := buf[y*width : (y+1)*width]
			for x := width - 1; x > 0; x-- {
				row[x] -= row[x-1]
			}
		}
	case 16:
		for y := 0; y < rows; y++ {
			row := buf[y*width*2 : (y+1)*width*2]
			for x := width - 1; x > 0; x-- {
				v := binary.BigEndian.Uint16(row[2*x:]) - binary.BigEndian.Uint16(row[2*x-2:])
				binary.BigEndian.PutUint16(row[2*x:], v)
			}
		}
	}
	return buf
}

func fill(n int, v byte) []byte { return bytes.Repeat([]byte{v}, n) }

// solidLayer builds an opaque 8-bit RGB layer of one color.
func solidLayer(name string, rect image.Rectangle, r, g, b uint8) testLayer {
	n := rect.Dx() * rect.Dy()
	return testLayer{
		rect: rect,
		channels: []testChannel{
			{id: ChannelTransparency, plane: fill(n, 0xff)},
			{id: 0, plane: fill(n, r)},
			{id: 1, plane: fill(n, g)},
			{id: 2, plane: fill(n, b)},
		},
		opacity: 0xff,
		name:    name,
	}
}
