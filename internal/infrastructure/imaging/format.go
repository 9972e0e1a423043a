package imaging

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidImage      = errors.New("invalid image")
)

// Format is the closed set of raster formats the store accepts.
type Format int

const (
	PNG Format = iota + 1
	JPEG
)

// ParseFormat maps a mime type, parameters and case ignored, to a Format.
func ParseFormat(mimeType string) (Format, error) {
	mt := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))

	switch mt {
	case "image/png":
		return PNG, nil
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return JPEG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, mimeType)
	}
}

func (f Format) MimeType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	default:
		return ""
	}
}

// Lossless reports whether re-encoding keeps every pixel.
func (f Format) Lossless() bool {
	switch f {
	case PNG:
		return true
	case JPEG:
		return false
	default:
		return false
	}
}

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}
