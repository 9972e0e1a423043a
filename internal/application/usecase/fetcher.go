package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/repository/blob"
	"postbridge/internal/domain/repository/database"
	"postbridge/internal/infrastructure/imaging"
	"postbridge/internal/infrastructure/metrics"
	"postbridge/pkg/keylock"
	"postbridge/pkg/logger"
)

// Resizer produces renditions that fit a bound.
type Resizer interface {
	Resize(ctx context.Context, req imaging.Request) (imaging.Result, error)
}

type Fetcher struct {
	retriever database.Retriever
	blobs     blob.Store
	locks     *keylock.Registry
	resizer   Resizer
	platforms map[string]dto.Bounds
	observer  metrics.Observer
	tracer    trace.Tracer
}

// NewFetcher builds the read path. locks must be the registry the Uploader
// uses so reads and writes of one digest are serialized together.
func NewFetcher(retriever database.Retriever, blobs blob.Store, locks *keylock.Registry,
	resizer Resizer, platforms map[string]dto.Bounds, observer metrics.Observer,
) *Fetcher {
	if observer == nil {
		observer = metrics.Nop{}
	}

	presets := make(map[string]dto.Bounds, len(platforms))
	for name, b := range platforms {
		presets[strings.ToLower(name)] = b
	}

	return &Fetcher{
		retriever: retriever,
		blobs:     blobs,
		locks:     locks,
		resizer:   resizer,
		platforms: presets,
		observer:  observer,
		tracer:    otel.Tracer(tracerName),
	}
}

// FetchForPlatform fetches id scaled to the named platform's preset.
func (f *Fetcher) FetchForPlatform(ctx context.Context, id, platform string) (*dto.ProcessedFile, error) {
	bounds, ok := f.platforms[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrValidation, platform)
	}

	return f.FetchProcessed(ctx, id, &bounds)
}

// FetchProcessed returns the bytes of record id, scaled down to bounds when
// bounds is non-nil and the image exceeds it. The blob is read and processed
// while holding the digest's lock.
func (f *Fetcher) FetchProcessed(ctx context.Context, id string, bounds *dto.Bounds) (*dto.ProcessedFile, error) {
	start := time.Now()

	ctx, span := f.tracer.Start(ctx, "Fetcher.FetchProcessed", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	out, err := f.fetch(ctx, id, bounds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.observer.RecordFetch(time.Since(start), false, err)

		return nil, err
	}

	span.SetAttributes(attribute.Bool("file.resized", out.Resized))
	f.observer.RecordFetch(time.Since(start), out.Resized, nil)

	return out, nil
}

func (f *Fetcher) fetch(ctx context.Context, id string, bounds *dto.Bounds) (*dto.ProcessedFile, error) {
	if bounds != nil && (bounds.MaxWidth <= 0 || bounds.MaxHeight <= 0) {
		return nil, fmt.Errorf("%w: bounds must be positive", ErrValidation)
	}

	file, err := f.retriever.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("lookup file: %w", err)
	}

	out := &dto.ProcessedFile{
		MimeType: file.MimeType,
		AltText:  file.AltText,
		Width:    file.Width,
		Height:   file.Height,
		Filename: file.Filename,
	}

	err = f.locks.WithLock(ctx, file.Digest, func(ctx context.Context) error {
		data, err := f.blobs.Read(ctx, file.Digest)
		if errors.Is(err, blob.ErrNotFound) {
			logger.Warn("catalog/blob drift: record has no blob", "id", file.ID, "digest", file.Digest)

			return fmt.Errorf("%w: blob for %s", ErrNotFound, file.ID)
		}

		if err != nil {
			return fmt.Errorf("read blob: %w", err)
		}

		out.Data = data

		if bounds == nil {
			return nil
		}

		res, err := f.resizer.Resize(ctx, imaging.Request{
			Data:      data,
			MimeType:  file.MimeType,
			MaxWidth:  bounds.MaxWidth,
			MaxHeight: bounds.MaxHeight,
			Quality:   bounds.Quality,
		})
		if err != nil {
			return resizeError(err)
		}

		out.Data = res.Data
		out.Width = res.Width
		out.Height = res.Height
		out.Resized = res.Resized

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func resizeError(err error) error {
	switch {
	case errors.Is(err, imaging.ErrInvalidImage):
		return fmt.Errorf("%w: %s", ErrInvalidImage, err.Error())
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	default:
		return fmt.Errorf("resize: %w", err)
	}
}
