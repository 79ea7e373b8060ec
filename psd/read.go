package psd

import (
	"fmt"

	"github.com/woozymasta/pixcodec/internal/logging"
	"github.com/woozymasta/pixcodec/pixel"
)

// Strategy selects where decoded pixels come from.
type Strategy int

const (
	// StrategyAuto uses the merged image when present, the layers otherwise.
	StrategyAuto Strategy = iota
	// StrategyComposite uses only the merged image data.
	StrategyComposite
	// StrategyLayers composites the layer records and ignores the merged image.
	StrategyLayers
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyComposite:
		return "composite"
	case StrategyLayers:
		return "layers"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ReadOptions configures PSD decoding.
type ReadOptions struct {
	Strategy Strategy
}

// Decode decodes a PSD or PSB document into RGBA8888.
func Decode(data []byte) (*pixel.Image, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions decodes a PSD or PSB document into RGBA8888.
// Nil opts uses StrategyAuto.
func DecodeWithOptions(data []byte, opts *ReadOptions) (*pixel.Image, error) {
	strategy := StrategyAuto
	if opts != nil {
		strategy = opts.Strategy
	}
	if strategy < StrategyAuto || strategy > StrategyLayers {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}

	d, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return d.Decode(strategy)
}

// Decode renders the document's pixels with the given strategy.
func (d *Document) Decode(strategy Strategy) (*pixel.Image, error) {
	if !d.ColorMode.Decodable() {
		return nil, decodeError("header", colorModeOff, fmt.Errorf("%w: %s", ErrUnsupportedColorMode, d.ColorMode))
	}

	var (
		img  *pixel.Image
		err  error
		used = strategy
	)
	switch strategy {
	case StrategyComposite:
		img, err = d.decodeComposite()
	case StrategyLayers:
		img, err = d.compositeLayers()
	case StrategyAuto:
		used = StrategyComposite
		img, err = d.decodeComposite()
		if err != nil && len(d.Layers) > 0 {
			if d.HasComposite() {
				logging.Logger().Warn("psd merged image unreadable, compositing layers", "error", err)
			}
			used = StrategyLayers
			img, err = d.compositeLayers()
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}
	if err != nil {
		return nil, err
	}

	logging.Logger().Debug("psd decoded",
		"version", d.Version,
		"mode", d.ColorMode.String(),
		"width", d.Width,
		"height", d.Height,
		"depth", d.Depth,
		"channels", d.Channels,
		"layers", len(d.Layers),
		"strategy", used.String())

	return img, nil
}
