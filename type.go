package pixcodec

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/pixcodec/dds"
	"github.com/woozymasta/pixcodec/psd"
	"github.com/woozymasta/pixcodec/tga"
)

// ImageType is a supported container format.
type ImageType uint8

const (
	// TypeUnknown is the zero value; it is never detected.
	TypeUnknown ImageType = iota
	// TypeDDS is DirectDraw Surface, including Enfusion EDDS.
	TypeDDS
	// TypePSD is Photoshop PSD and PSB.
	TypePSD
	// TypeTGA is Truevision TGA.
	TypeTGA
)

// Types lists every detectable ImageType.
var Types = [...]ImageType{TypeDDS, TypePSD, TypeTGA}

func (t ImageType) String() string {
	switch t {
	case TypeDDS:
		return "dds"
	case TypePSD:
		return "psd"
	case TypeTGA:
		return "tga"
	case TypeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("ImageType(%d)", uint8(t))
	}
}

// Extensions returns the lower-case file extensions, with dot, mapped to t.
func (t ImageType) Extensions() []string {
	switch t {
	case TypeDDS:
		return []string{".dds", ".edds"}
	case TypePSD:
		return []string{".psd", ".psb"}
	case TypeTGA:
		return []string{".tga", ".tpic", ".vda", ".icb", ".vst"}
	default:
		return nil
	}
}

// CanWrite reports whether Write supports t.
func (t ImageType) CanWrite() bool { return t == TypeTGA }

// Detect identifies the container of data. Leading signatures and the TGA
// 2.0 footer win over the extension of name, which may be empty. Headerless
// TGA data without a matching extension is accepted when its header is
// plausible.
func Detect(data []byte, name string) (ImageType, error) {
	switch {
	case bytes.HasPrefix(data, []byte(dds.Magic)):
		return TypeDDS, nil
	case bytes.HasPrefix(data, []byte(psd.Magic)):
		return TypePSD, nil
	case tga.HasFooter(data):
		return TypeTGA, nil
	}

	if t, err := DetectName(name); err == nil {
		return t, nil
	}
	if tga.Plausible(data) {
		return TypeTGA, nil
	}

	if name != "" {
		return TypeUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return TypeUnknown, ErrUnknownFormat
}

// DetectName identifies the container from the extension of name alone.
func DetectName(name string) (ImageType, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		for _, t := range Types {
			for _, e := range t.Extensions() {
				if e == ext {
					return t, nil
				}
			}
		}
	}
	return TypeUnknown, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}
