package pixcodec

import (
	"image"
	"image/color"

	"github.com/woozymasta/pixcodec/dds"
	"github.com/woozymasta/pixcodec/psd"
	"github.com/woozymasta/pixcodec/tga"
)

// Config describes an image without decoding its pixels.
type Config struct {
	Type   ImageType
	Width  int
	Height int
	// ColorModel matches the layout Read returns without a target Format.
	ColorModel color.Model
}

// ReadConfig detects the container and reads only its header.
func ReadConfig(data []byte, name string) (Config, error) {
	t, err := Detect(data, name)
	if err != nil {
		return Config{}, err
	}

	var cfg image.Config
	switch t {
	case TypeDDS:
		cfg, err = dds.ReadConfig(data)
	case TypePSD:
		cfg, err = psd.ReadConfig(data)
	default:
		cfg, err = tga.ReadConfig(data)
	}
	if err != nil {
		return Config{}, err
	}

	return Config{Type: t, Width: cfg.Width, Height: cfg.Height, ColorModel: cfg.ColorModel}, nil
}
