package psd

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/woozymasta/pixcodec/internal/binread"
	"github.com/woozymasta/pixcodec/internal/logging"
	"github.com/woozymasta/pixcodec/pixel"
)

// decodeComposite decodes the merged image data section.
func (d *Document) decodeComposite() (*pixel.Image, error) {
	if !d.HasComposite() {
		return nil, decodeError("image data", d.compositeOff, ErrNoImageData)
	}

	r := binread.NewBigEndian(d.composite)
	tag, _ := r.U16()
	c := Compression(tag)
	if !c.Valid() {
		return nil, decodeError("image data", d.compositeOff, fmt.Errorf("%w: %d", ErrUnknownCompression, tag))
	}

	planes, err := decodePlanes(r, c, planeSpec{
		planes: d.Channels,
		width:  d.Width,
		height: d.Height,
		depth:  d.Depth,
		psb:    d.PSB(),
	})
	if err != nil {
		return nil, decodeError("image data", d.compositeOff, err)
	}

	cc := d.ColorMode.colorChannels()
	colors := make([][]byte, cc)
	for i := range colors {
		colors[i] = normalize(planes[i], d.Width, d.Height, d.Depth)
	}
	// The first extra channel of the merged image is its transparency.
	var alpha []byte
	if d.Channels > cc {
		alpha = normalize(planes[cc], d.Width, d.Height, d.Depth)
	}

	img, err := pixel.Alloc(d.Width, d.Height, pixel.FormatRGBA8888)
	if err != nil {
		return nil, decodeError("image data", d.compositeOff, err)
	}
	colorizer{mode: d.ColorMode, palette: d.Palette}.fill(img.Pix(), colors, alpha, d.Width*d.Height)

	return img, nil
}

// visibility resolves each layer's effective visibility, hiding everything
// inside a hidden group. Group folder records sit above their divider.
func (d *Document) visibility() []bool {
	visible := make([]bool, len(d.Layers))
	var groups []bool
	for i := len(d.Layers) - 1; i >= 0; i-- {
		l := d.Layers[i]
		parentHidden := len(groups) > 0 && groups[len(groups)-1]
		switch {
		case l.Section.Group():
			groups = append(groups, parentHidden || l.Hidden())
		case l.Section == SectionDivider:
			if len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
		default:
			visible[i] = !parentHidden && !l.Hidden()
		}
	}
	return visible
}

// compositeLayers draws visible layers bottom to top over a transparent
// canvas. Every blend mode is drawn as normal alpha-over.
func (d *Document) compositeLayers() (*pixel.Image, error) {
	if len(d.Layers) == 0 {
		return nil, decodeError("layers", -1, ErrNoImageData)
	}

	log := logging.Logger()
	bounds := image.Rect(0, 0, d.Width, d.Height)
	canvas := image.NewRGBA(bounds)
	visible := d.visibility()

	for i, l := range d.Layers {
		if !visible[i] || l.Opacity == 0 || l.Rect.Empty() || !l.Rect.Overlaps(bounds) {
			continue
		}

		src, err := d.layerImage(l)
		if err != nil {
			return nil, decodeError(fmt.Sprintf("layer %d", i), -1, err)
		}

		switch l.BlendMode {
		case "norm", "pass":
		default:
			log.Warn("psd blend mode approximated as normal", "layer", l.Name, "mode", l.BlendMode)
		}
		if l.Clipping != 0 {
			log.Warn("psd clipping mask drawn unclipped", "layer", l.Name)
		}

		r := l.Rect.Intersect(bounds)
		var mask image.Image
		if l.Opacity != 0xff {
			mask = image.NewUniform(color.Alpha{A: l.Opacity})
		}
		xdraw.DrawMask(canvas, r, src, r.Min, mask, image.Point{}, xdraw.Over)
	}

	img, err := pixel.Alloc(d.Width, d.Height, pixel.FormatRGBA8888)
	if err != nil {
		return nil, decodeError("layers", -1, err)
	}
	unpremultiply(img.Pix(), canvas.Pix)

	return img, nil
}

func unpremultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		if a == 0 {
			continue
		}
		dst[i] = uint8((uint32(src[i])*255 + a/2) / a)     //nolint:gosec // premultiplied <= a
		dst[i+1] = uint8((uint32(src[i+1])*255 + a/2) / a) //nolint:gosec // premultiplied <= a
		dst[i+2] = uint8((uint32(src[i+2])*255 + a/2) / a) //nolint:gosec // premultiplied <= a
		dst[i+3] = uint8(a)
	}
}

// layerImage decodes a layer's channels into an image placed at l.Rect.
func (d *Document) layerImage(l *Layer) (*image.NRGBA, error) {
	w, h := l.Rect.Dx(), l.Rect.Dy()
	cc := d.ColorMode.colorChannels()

	planes := make([][]byte, cc)
	var alpha []byte
	for i := range l.Channels {
		ch := &l.Channels[i]
		var dst *[]byte
		switch {
		case ch.ID >= 0 && int(ch.ID) < cc:
			dst = &planes[ch.ID]
		case ch.ID == ChannelTransparency:
			dst = &alpha
		default:
			continue
		}
		p, err := d.channelPlane(ch, w, h)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch.ID, err)
		}
		*dst = p
	}

	img := image.NewNRGBA(l.Rect)
	colorizer{mode: d.ColorMode, palette: d.Palette}.fill(img.Pix, planes, alpha, w*h)

	if m := l.Mask; m != nil && !m.Disabled() {
		if ch := l.channel(ChannelUserMask); ch != nil {
			plane, err := d.channelPlane(ch, m.Rect.Dx(), m.Rect.Dy())
			if err != nil {
				return nil, fmt.Errorf("user mask: %w", err)
			}
			applyMask(img, m, plane)
		}
	}

	return img, nil
}

// channelPlane decodes one layer channel to a w*h byte plane. A channel
// without stored data yields nil.
func (d *Document) channelPlane(ch *Channel, w, h int) ([]byte, error) {
	if w == 0 || h == 0 || ch.data == nil {
		return nil, nil
	}
	planes, err := decodePlanes(binread.NewBigEndian(ch.data), ch.Compression, planeSpec{
		planes: 1,
		width:  w,
		height: h,
		depth:  d.Depth,
		psb:    d.PSB(),
	})
	if err != nil {
		return nil, err
	}
	return normalize(planes[0], w, h, d.Depth), nil
}

// applyMask scales layer alpha by the user mask. Outside the mask rectangle
// the mask's default color applies.
func applyMask(img *image.NRGBA, m *Mask, plane []byte) {
	b := img.Bounds()
	mw := m.Rect.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := m.DefaultColor
			if plane != nil && image.Pt(x, y).In(m.Rect) {
				v = plane[(y-m.Rect.Min.Y)*mw+x-m.Rect.Min.X]
			}
			i := img.PixOffset(x, y) + 3
			img.Pix[i] = uint8((uint32(img.Pix[i])*uint32(v) + 127) / 255) //nolint:gosec // product of bytes over 255
		}
	}
}
