package dds

import (
	"fmt"

	"github.com/woozymasta/bcn"
)

// Pixel format flags not exported by bcn.
const (
	pfAlpha = 0x2
)

// DXGI format codes understood by the reader.
const (
	dxgiR8G8B8A8Unorm     = 28
	dxgiR8G8B8A8UnormSRGB = 29
	dxgiA8Unorm           = 65
	dxgiBC1Unorm          = 71
	dxgiBC1UnormSRGB      = 72
	dxgiBC2Unorm          = 74
	dxgiBC2UnormSRGB      = 75
	dxgiBC3Unorm          = 77
	dxgiBC3UnormSRGB      = 78
	dxgiBC4Unorm          = 80
	dxgiBC4Snorm          = 81
	dxgiBC5Unorm          = 83
	dxgiBC5Snorm          = 84
	dxgiB5G6R5Unorm       = 85
	dxgiB5G5R5A1Unorm     = 86
	dxgiB8G8R8A8Unorm     = 87
	dxgiB8G8R8X8Unorm     = 88
	dxgiB8G8R8A8UnormSRGB = 91
	dxgiB8G8R8X8UnormSRGB = 93
	dxgiBC6HUF16          = 95
	dxgiBC6HSF16          = 96
	dxgiBC7Unorm          = 98
	dxgiBC7UnormSRGB      = 99
)

// surface describes how the base level is stored. Exactly one of bcn and
// masks selects the decoder.
type surface struct {
	name  string
	bcn   bcn.Format
	masks *bitMasks
}

func (s surface) String() string { return s.name }

func bcnSurface(format bcn.Format, name string) surface {
	return surface{name: name, bcn: format}
}

func maskSurface(m bitMasks, name string) surface {
	return surface{name: name, bcn: bcn.FormatUnknown, masks: &m}
}

// dataLength returns the byte size of one level.
func (s surface) dataLength(width, height int) (int, error) {
	if s.masks != nil {
		pitch, err := s.masks.pitch(width)
		if err != nil {
			return 0, err
		}
		return mulInt(pitch, height)
	}
	return expectedDataLength(s.bcn, width, height)
}

// detectFormat resolves the stored pixel layout from the legacy pixel format
// block or the DX10 extension. Unknown codes fail with ErrUnknownFormat;
// recognised codes this package will not approximate fail with
// ErrUnsupportedFormat.
func detectFormat(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) (surface, error) {
	if dx10 != nil {
		return mapDxgiFormat(dx10.DXGIFormat)
	}

	pf := header.PixelFormat
	if (pf.Flags & bcn.DDSPFFourCC) != 0 {
		fourCCStr := intToFourCC(pf.FourCC)
		switch fourCCStr {
		case "DXT1":
			return bcnSurface(bcn.FormatDXT1, fourCCStr), nil
		case "DXT3":
			return bcnSurface(bcn.FormatDXT3, fourCCStr), nil
		case "DXT5":
			return bcnSurface(bcn.FormatDXT5, fourCCStr), nil
		case "ATI1", "BC4U":
			return bcnSurface(bcn.FormatBC4, fourCCStr), nil
		case "ATI2", "BC5U":
			return bcnSurface(bcn.FormatBC5, fourCCStr), nil
		case "DXT2", "DXT4", "BC4S", "BC5S", "RGBG", "GRGB", "UYVY", "YUY2":
			return surface{}, fmt.Errorf("%w: FourCC %q", ErrUnsupportedFormat, fourCCStr)
		default:
			return surface{}, fmt.Errorf("%w: FourCC %q", ErrUnknownFormat, printableFourCC(pf.FourCC))
		}
	}

	if (pf.Flags & bcn.DDSPFRGB) != 0 {
		hasAlpha := pf.Flags&bcn.DDSPFAlphaPixels != 0
		if hasAlpha && pf.RGBBitCount == 32 {
			if pf.RBitMask == 0x000000ff && pf.GBitMask == 0x0000ff00 &&
				pf.BBitMask == 0x00ff0000 && pf.ABitMask == 0xff000000 {
				return bcnSurface(bcn.FormatRGBA8, "RGBA8"), nil
			}
			if pf.RBitMask == 0x00ff0000 && pf.GBitMask == 0x0000ff00 &&
				pf.BBitMask == 0x000000ff && pf.ABitMask == 0xff000000 {
				return bcnSurface(bcn.FormatBGRA8, "BGRA8"), nil
			}
		}

		m := bitMasks{bitCount: int(pf.RGBBitCount), r: pf.RBitMask, g: pf.GBitMask, b: pf.BBitMask}
		if hasAlpha {
			m.a = pf.ABitMask
		}
		if err := m.validate(); err != nil {
			return surface{}, err
		}
		return maskSurface(m, fmt.Sprintf("RGB%d", pf.RGBBitCount)), nil
	}

	if (pf.Flags & bcn.DDSPFLuminance) != 0 {
		m := bitMasks{bitCount: int(pf.RGBBitCount), r: pf.RBitMask, luminance: true}
		if pf.Flags&bcn.DDSPFAlphaPixels != 0 {
			m.a = pf.ABitMask
		}
		if err := m.validate(); err != nil {
			return surface{}, err
		}
		return maskSurface(m, fmt.Sprintf("LUMINANCE%d", pf.RGBBitCount)), nil
	}

	if (pf.Flags & pfAlpha) != 0 {
		m := bitMasks{bitCount: int(pf.RGBBitCount), a: pf.ABitMask, alphaOnly: true}
		if err := m.validate(); err != nil {
			return surface{}, err
		}
		return maskSurface(m, fmt.Sprintf("ALPHA%d", pf.RGBBitCount)), nil
	}

	return surface{}, fmt.Errorf("%w: pixel format flags 0x%x", ErrUnknownFormat, pf.Flags)
}

func mapDxgiFormat(dxgiFormat uint32) (surface, error) {
	name := fmt.Sprintf("DXGI %d", dxgiFormat)
	switch dxgiFormat {
	case dxgiBC1Unorm, dxgiBC1UnormSRGB:
		return bcnSurface(bcn.FormatDXT1, name), nil
	case dxgiBC2Unorm, dxgiBC2UnormSRGB:
		return bcnSurface(bcn.FormatDXT3, name), nil
	case dxgiBC3Unorm, dxgiBC3UnormSRGB:
		return bcnSurface(bcn.FormatDXT5, name), nil
	case dxgiBC4Unorm:
		return bcnSurface(bcn.FormatBC4, name), nil
	case dxgiBC5Unorm:
		return bcnSurface(bcn.FormatBC5, name), nil
	case dxgiB8G8R8A8Unorm, dxgiB8G8R8A8UnormSRGB:
		return bcnSurface(bcn.FormatBGRA8, name), nil
	case dxgiR8G8B8A8Unorm, dxgiR8G8B8A8UnormSRGB:
		return bcnSurface(bcn.FormatRGBA8, name), nil
	case dxgiB8G8R8X8Unorm, dxgiB8G8R8X8UnormSRGB:
		return maskSurface(bitMasks{bitCount: 32, r: 0x00ff0000, g: 0x0000ff00, b: 0x000000ff}, name), nil
	case dxgiB5G6R5Unorm:
		return maskSurface(bitMasks{bitCount: 16, r: 0xf800, g: 0x07e0, b: 0x001f}, name), nil
	case dxgiB5G5R5A1Unorm:
		return maskSurface(bitMasks{bitCount: 16, r: 0x7c00, g: 0x03e0, b: 0x001f, a: 0x8000}, name), nil
	case dxgiA8Unorm:
		return maskSurface(bitMasks{bitCount: 8, a: 0xff, alphaOnly: true}, name), nil
	case dxgiBC4Snorm, dxgiBC5Snorm, dxgiBC6HUF16, dxgiBC6HSF16, dxgiBC7Unorm, dxgiBC7UnormSRGB:
		return surface{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	default:
		return surface{}, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

func intToFourCC(value uint32) string {
	return string([]byte{
		byte(value & 0xff),
		byte((value >> 8) & 0xff),
		byte((value >> 16) & 0xff),
		byte((value >> 24) & 0xff),
	})
}

// printableFourCC renders a FourCC for messages; legacy D3DFMT codes are
// plain numbers rather than characters.
func printableFourCC(value uint32) string {
	s := intToFourCC(value)
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return fmt.Sprintf("D3DFMT %d", value)
		}
	}
	return s
}

func expectedDataLength(format bcn.Format, width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	blocksW := width/4 + min(width%4, 1)
	blocksH := height/4 + min(height%4, 1)
	switch format {
	case bcn.FormatDXT1, bcn.FormatBC4:
		return mulInt(blocksW, blocksH, 8)
	case bcn.FormatDXT3, bcn.FormatDXT5, bcn.FormatBC5:
		return mulInt(blocksW, blocksH, 16)
	case bcn.FormatRGBA8, bcn.FormatBGRA8:
		return mulInt(width, height, 4)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func makeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}
