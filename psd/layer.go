package psd

import (
	"fmt"
	"image"
	"unicode/utf16"

	"github.com/woozymasta/pixcodec/internal/binread"
	"github.com/woozymasta/pixcodec/pixel"
)

// ChannelID identifies the role of a layer channel. Non-negative values are
// color channels in color-mode order.
type ChannelID int16

// Special channel ids.
const (
	ChannelTransparency ChannelID = -1
	ChannelUserMask     ChannelID = -2
	ChannelRealUserMask ChannelID = -3
)

// Channel is one stored plane of a layer.
type Channel struct {
	ID ChannelID
	// Length is the stored size including the compression tag.
	Length      uint64
	Compression Compression

	data []byte
}

// SectionType is the group role recorded in an 'lsct' block.
type SectionType uint32

// Section divider types.
const (
	SectionLayer        SectionType = 0
	SectionOpenFolder   SectionType = 1
	SectionClosedFolder SectionType = 2
	SectionDivider      SectionType = 3
)

// Group reports whether the record opens a group rather than holding pixels.
func (s SectionType) Group() bool { return s == SectionOpenFolder || s == SectionClosedFolder }

// Mask is the user mask of a layer.
type Mask struct {
	Rect         image.Rectangle
	DefaultColor uint8
	Flags        uint8
}

const (
	maskDisabled = 0x02

	layerHidden = 0x02
)

// Disabled reports whether the mask is switched off.
func (m *Mask) Disabled() bool { return m.Flags&maskDisabled != 0 }

// Layer is one layer record. Layers are ordered bottom-most first.
type Layer struct {
	// Rect is the layer bounds in document coordinates.
	Rect      image.Rectangle
	Channels  []Channel
	BlendMode string
	Opacity   uint8
	Clipping  uint8
	Flags     uint8
	// Name is the Unicode name when present, the Pascal name otherwise.
	Name    string
	Mask    *Mask
	Section SectionType
}

// Hidden reports whether the layer's own visibility flag is off.
func (l *Layer) Hidden() bool { return l.Flags&layerHidden != 0 }

func (l *Layer) channel(id ChannelID) *Channel {
	for i := range l.Channels {
		if l.Channels[i].ID == id {
			return &l.Channels[i]
		}
	}
	return nil
}

// Additional layer info keys whose length is 64-bit in PSB documents.
var longLengthKeys = map[string]bool{
	"LMsk": true, "Lr16": true, "Lr32": true, "Layr": true, "Mt16": true, "Mt32": true,
	"Mtrn": true, "Alph": true, "FMsk": true, "lnk2": true, "FEid": true, "FXid": true,
	"PxSD": true,
}

// readLength reads a section length that is 64-bit in PSB documents.
func readLength(r *binread.Reader, long bool) (int, error) {
	var (
		n   int
		err error
	)
	if long {
		v, rerr := r.U64()
		if rerr != nil {
			return 0, fmt.Errorf("%w: section length: %v", ErrTruncated, rerr)
		}
		n, err = pixel.IntFromU64(v)
	} else {
		v, rerr := r.U32()
		if rerr != nil {
			return 0, fmt.Errorf("%w: section length: %v", ErrTruncated, rerr)
		}
		n, err = pixel.IntFromU32(v)
	}
	if err != nil || n > r.Len() {
		return 0, fmt.Errorf("%w: %d remain", ErrInvalidSectionLength, r.Len())
	}
	return n, nil
}

// readLayerInfo parses a layer info block: count, records and channel data.
// mergedAlpha reports a negative count, which marks the first extra channel
// of the merged image as transparency.
func readLayerInfo(r *binread.Reader, psb bool) (layers []*Layer, mergedAlpha bool, err error) {
	if r.Len() == 0 {
		return nil, false, nil
	}
	count, err := r.I16()
	if err != nil {
		return nil, false, fmt.Errorf("%w: layer count: %v", ErrTruncated, err)
	}
	n := int(count)
	if n < 0 {
		n = -n
		mergedAlpha = true
	}

	layers = make([]*Layer, n)
	for i := range layers {
		start := r.Offset()
		layers[i], err = readLayerRecord(r, psb)
		if err != nil {
			return nil, false, fmt.Errorf("layer %d record at %d: %w", i, start, err)
		}
	}

	for i, l := range layers {
		for j := range l.Channels {
			ch := &l.Channels[j]
			n, err := pixel.IntFromU64(ch.Length)
			if err != nil || n > r.Len() {
				return nil, false, fmt.Errorf("layer %d channel %d: %w: %d bytes, %d remain",
					i, ch.ID, ErrInvalidSectionLength, ch.Length, r.Len())
			}
			body, _ := r.Bytes(n)
			if len(body) < 2 {
				continue
			}
			ch.Compression = Compression(uint16(body[0])<<8 | uint16(body[1]))
			if !ch.Compression.Valid() {
				return nil, false, fmt.Errorf("layer %d channel %d: %w: %d", i, ch.ID, ErrUnknownCompression, uint16(ch.Compression))
			}
			ch.data = body[2:]
		}
	}

	return layers, mergedAlpha, nil
}

// checkBounds validates a stored top, left, bottom, right rectangle against
// the document size limit.
func checkBounds(rect [4]int32, psb bool) error {
	top, left, bottom, right := rect[0], rect[1], rect[2], rect[3]
	limit := int64(maxSizePSD)
	if psb {
		limit = maxSizePSB
	}
	if bottom < top || right < left || int64(bottom)-int64(top) > limit || int64(right)-int64(left) > limit {
		return fmt.Errorf("(%d,%d)-(%d,%d)", left, top, right, bottom)
	}
	return nil
}

func readLayerRecord(r *binread.Reader, psb bool) (*Layer, error) {
	var rect [4]int32
	for i := range rect {
		v, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("%w: bounds: %v", ErrTruncated, err)
		}
		rect[i] = v
	}
	if err := checkBounds(rect, psb); err != nil {
		return nil, fmt.Errorf("%w: bounds %v", ErrInvalidLayer, err)
	}
	top, left, bottom, right := rect[0], rect[1], rect[2], rect[3]

	nch, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("%w: channel count: %v", ErrTruncated, err)
	}
	if nch > maxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidLayer, nch)
	}

	l := &Layer{
		Rect:     image.Rect(int(left), int(top), int(right), int(bottom)),
		Channels: make([]Channel, nch),
	}
	for i := range l.Channels {
		id, err := r.I16()
		if err != nil {
			return nil, fmt.Errorf("%w: channel info: %v", ErrTruncated, err)
		}
		var length uint64
		if psb {
			length, err = r.U64()
		} else {
			var v uint32
			v, err = r.U32()
			length = uint64(v)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: channel info: %v", ErrTruncated, err)
		}
		l.Channels[i] = Channel{ID: ChannelID(id), Length: length}
	}

	sig, err := r.FourCC()
	if err != nil {
		return nil, fmt.Errorf("%w: blend signature: %v", ErrTruncated, err)
	}
	if sig != "8BIM" {
		return nil, fmt.Errorf("%w: blend signature %q", ErrInvalidLayer, sig)
	}
	if l.BlendMode, err = r.FourCC(); err != nil {
		return nil, fmt.Errorf("%w: blend mode: %v", ErrTruncated, err)
	}

	fields, err := r.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("%w: layer flags: %v", ErrTruncated, err)
	}
	l.Opacity, l.Clipping, l.Flags = fields[0], fields[1], fields[2]

	extraLen, err := readLength(r, false)
	if err != nil {
		return nil, fmt.Errorf("extra data: %w", err)
	}
	extra, _ := r.Sub(extraLen)
	if err := l.readExtra(extra, psb); err != nil {
		return nil, err
	}

	return l, nil
}

// readExtra parses the mask, blending ranges, name and tagged blocks.
func (l *Layer) readExtra(r *binread.Reader, psb bool) error {
	maskLen, err := readLength(r, false)
	if err != nil {
		return fmt.Errorf("mask data: %w", err)
	}
	mask, _ := r.Sub(maskLen)
	if maskLen >= 18 {
		var rect [4]int32
		for i := range rect {
			rect[i], _ = mask.I32()
		}
		if err := checkBounds(rect, psb); err != nil {
			return fmt.Errorf("%w: mask bounds %v", ErrInvalidLayer, err)
		}
		m := &Mask{Rect: image.Rect(int(rect[1]), int(rect[0]), int(rect[3]), int(rect[2]))}
		m.DefaultColor, _ = mask.U8()
		m.Flags, _ = mask.U8()
		l.Mask = m
	}

	rangesLen, err := readLength(r, false)
	if err != nil {
		return fmt.Errorf("blending ranges: %w", err)
	}
	_ = r.Skip(rangesLen)

	nameLen, err := r.U8()
	if err != nil {
		return fmt.Errorf("%w: layer name: %v", ErrTruncated, err)
	}
	name, err := r.Bytes(int(nameLen))
	if err != nil {
		return fmt.Errorf("%w: layer name: %v", ErrTruncated, err)
	}
	l.Name = string(name)
	// The Pascal string including its length byte is padded to 4 bytes.
	if pad := (4 - (1+int(nameLen))%4) % 4; pad <= r.Len() {
		_ = r.Skip(pad)
	}

	for r.Len() >= 12 {
		sig, _ := r.Peek(4)
		if string(sig) != "8BIM" && string(sig) != "8B64" {
			break
		}
		_ = r.Skip(4)
		key, _ := r.FourCC()
		n, err := readLength(r, psb && longLengthKeys[key])
		if err != nil {
			return fmt.Errorf("tagged block %q: %w", key, err)
		}
		body, _ := r.Sub(n)
		l.readTaggedBlock(key, body)
	}

	return nil
}

func (l *Layer) readTaggedBlock(key string, r *binread.Reader) {
	switch key {
	case "lsct", "lsdk":
		if v, err := r.U32(); err == nil && v <= uint32(SectionDivider) {
			l.Section = SectionType(v)
		}
	case "luni":
		count, err := r.U32()
		if err != nil || uint64(count)*2 > uint64(r.Len()) {
			return
		}
		units := make([]uint16, count)
		for i := range units {
			units[i], _ = r.U16()
		}
		for len(units) > 0 && units[len(units)-1] == 0 {
			units = units[:len(units)-1]
		}
		l.Name = string(utf16.Decode(units))
	}
}
