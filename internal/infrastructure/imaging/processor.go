package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultJPEGQuality   = 85
	DefaultMaxConcurrent = 4
)

// Request asks for Data to fit within MaxWidth x MaxHeight. The current size
// is always read from the image header, never taken from the caller.
type Request struct {
	Data      []byte
	MimeType  string
	MaxWidth  int
	MaxHeight int
	// Quality overrides the configured JPEG quality when in 1..100.
	Quality int
}

type Result struct {
	Data    []byte
	Width   int
	Height  int
	Resized bool
}

// Processor decodes, scales and re-encodes images. At most MaxConcurrent
// decode/encode jobs run at once; the rest wait for a slot or their ctx.
type Processor struct {
	jpegQuality int
	pngLevel    png.CompressionLevel
	slots       *semaphore.Weighted
}

func NewProcessor(cfg Config) (*Processor, error) {
	quality := cfg.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}

	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range 1..100", quality)
	}

	level, err := parseCompression(cfg.PNGCompression)
	if err != nil {
		return nil, err
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &Processor{
		jpegQuality: quality,
		pngLevel:    level,
		slots:       semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Resize scales req.Data to fit within MaxWidth x MaxHeight keeping its
// aspect ratio. The decision uses the size in the image header. An image that
// already fits comes back byte for byte; otherwise the returned dimensions are
// read from the encoded output.
func (p *Processor) Resize(ctx context.Context, req Request) (Result, error) {
	format, err := ParseFormat(req.MimeType)
	if err != nil {
		return Result{}, err
	}

	curW, curH, err := Dimensions(req.Data, format)
	if err != nil {
		return Result{}, err
	}

	w, h, needed := Fit(curW, curH, req.MaxWidth, req.MaxHeight)
	if !needed {
		return Result{Data: req.Data, Width: curW, Height: curH}, nil
	}

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer p.slots.Release(1)

	img, err := decode(req.Data, format)
	if err != nil {
		return Result{}, err
	}

	scaled := imaging.Resize(img, w, h, imaging.Linear)

	var buf bytes.Buffer
	switch format {
	case PNG:
		err = imaging.Encode(&buf, scaled, imaging.PNG, imaging.PNGCompressionLevel(p.pngLevel))
	case JPEG:
		err = imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(p.quality(req.Quality)))
	}
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", format, err)
	}

	outW, outH, err := Dimensions(buf.Bytes(), format)
	if err != nil {
		return Result{}, err
	}

	return Result{Data: buf.Bytes(), Width: outW, Height: outH, Resized: true}, nil
}

// Dimensions reads the size from the image header without decoding pixels.
func Dimensions(data []byte, format Format) (int, int, error) {
	var (
		cfg image.Config
		err error
	)

	switch format {
	case PNG:
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	case JPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s header: %s", ErrInvalidImage, format, err.Error())
	}

	return cfg.Width, cfg.Height, nil
}

func decode(data []byte, format Format) (image.Image, error) {
	var (
		img image.Image
		err error
	)

	switch format {
	case PNG:
		img, err = png.Decode(bytes.NewReader(data))
	case JPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %s", ErrInvalidImage, format, err.Error())
	}

	return img, nil
}

func (p *Processor) quality(q int) int {
	if q >= 1 && q <= 100 {
		return q
	}

	return p.jpegQuality
}

func parseCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none", "no":
		return png.NoCompression, nil
	case "best_speed", "fast":
		return png.BestSpeed, nil
	case "best", "best_compression":
		return png.BestCompression, nil
	default:
		return 0, fmt.Errorf("unknown png compression %q", s)
	}
}
