package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/model"
	"postbridge/internal/domain/repository/blob"
	"postbridge/internal/domain/repository/broker"
	"postbridge/internal/domain/repository/database"
	"postbridge/internal/infrastructure/imaging"
	"postbridge/internal/infrastructure/metrics"
	"postbridge/pkg/digest"
	"postbridge/pkg/keylock"
	"postbridge/pkg/logger"
)

const tracerName = "postbridge/usecase"

type Uploader struct {
	retriever      database.Retriever
	writer         database.Writer
	blobs          blob.Store
	locks          *keylock.Registry
	publisher      broker.Publisher
	observer       metrics.Observer
	tracer         trace.Tracer
	defaultAddress string
	now            func() time.Time
}

// NewUploader wires the ingestion path. publisher may be nil, in which case no
// ingestion events are emitted; a nil observer records nothing.
func NewUploader(retriever database.Retriever, writer database.Writer, blobs blob.Store,
	locks *keylock.Registry, publisher broker.Publisher, observer metrics.Observer, address string,
) *Uploader {
	if observer == nil {
		observer = metrics.Nop{}
	}

	return &Uploader{
		retriever:      retriever,
		writer:         writer,
		blobs:          blobs,
		locks:          locks,
		publisher:      publisher,
		observer:       observer,
		tracer:         otel.Tracer(tracerName),
		defaultAddress: address,
		now:            time.Now,
	}
}

// ResolveOrCreate returns the record for in, creating it and storing its bytes
// if no record with the same content and metadata exists yet. Identical
// uploads always resolve to the same record and the blob is written at most
// once per digest.
func (u *Uploader) ResolveOrCreate(ctx context.Context, in dto.UploadInput) (*model.File, error) {
	start := time.Now()

	ctx, span := u.tracer.Start(ctx, "Uploader.ResolveOrCreate")
	defer span.End()

	file, created, err := u.resolve(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		u.observer.RecordIngest(time.Since(start), metrics.OutcomeFailed)

		return nil, err
	}

	span.SetAttributes(
		attribute.String("file.id", file.ID),
		attribute.String("file.digest", file.Digest),
		attribute.Bool("file.created", created),
	)

	if !created {
		u.observer.RecordIngest(time.Since(start), metrics.OutcomeDeduplicated)

		return file, nil
	}

	u.observer.RecordIngest(time.Since(start), metrics.OutcomeCreated)
	u.publish(ctx, file)

	return file, nil
}

func (u *Uploader) resolve(ctx context.Context, in dto.UploadInput) (*model.File, bool, error) {
	format, err := validate(in)
	if err != nil {
		return nil, false, err
	}

	width, height := in.Width, in.Height
	if width <= 0 || height <= 0 {
		width, height, err = imaging.Dimensions(in.Data, format)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s", ErrInvalidImage, err.Error())
		}
	}

	key := model.CompositeKey{
		Digest:   digest.Sum(in.Data),
		Filename: in.Filename,
		AltText:  in.AltText,
		Width:    width,
		Height:   height,
		MimeType: format.MimeType(),
	}

	existing, err := u.retriever.FindByCompositeKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup file: %w", err)
	}

	var (
		file    *model.File
		created bool
	)

	err = u.locks.WithLock(ctx, key.Digest, func(ctx context.Context) error {
		// Another upload may have inserted the record while we waited.
		found, err := u.retriever.FindByCompositeKey(ctx, key)
		if err == nil {
			file = found

			return nil
		}

		if !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("lookup file: %w", err)
		}

		written, err := u.blobs.Write(ctx, key.Digest, in.Data)
		if err != nil {
			return fmt.Errorf("write blob: %w", err)
		}

		if written {
			u.observer.RecordBlobWrite(len(in.Data))
			logger.Debug("blob written", "digest", key.Digest, "size", len(in.Data))
		}

		record := &model.File{
			ID:        key.ID(),
			Digest:    key.Digest,
			Filename:  key.Filename,
			MimeType:  key.MimeType,
			AltText:   key.AltText,
			Width:     key.Width,
			Height:    key.Height,
			Size:      int64(len(in.Data)),
			CreatedAt: u.now().UTC().Truncate(time.Millisecond),
		}

		stored, inserted, err := u.writer.Insert(ctx, record)
		if err != nil {
			return fmt.Errorf("insert file: %w", err)
		}

		file, created = stored, inserted

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return file, created, nil
}

func validate(in dto.UploadInput) (imaging.Format, error) {
	if len(in.Data) == 0 {
		return 0, fmt.Errorf("%w: empty upload", ErrValidation)
	}

	if strings.TrimSpace(in.Filename) == "" {
		return 0, fmt.Errorf("%w: filename is required", ErrValidation)
	}

	format, err := imaging.ParseFormat(in.MimeType)
	if err != nil {
		return 0, fmt.Errorf("%w: mime type %q not allowed", ErrValidation, in.MimeType)
	}

	if detected := mimetype.Detect(in.Data); !detected.Is(format.MimeType()) {
		return 0, fmt.Errorf("%w: declared %s but content is %s", ErrValidation, format.MimeType(), detected.String())
	}

	return format, nil
}

func (u *Uploader) publish(ctx context.Context, file *model.File) {
	if u.publisher == nil {
		return
	}

	body, err := json.Marshal(dto.IngestEvent{
		ID:    uuid.NewString(),
		Event: dto.EventFileIngested,
		File:  toDescriptor(file, u.defaultAddress),
	})
	if err != nil {
		logger.Error("failed to encode ingest event", "id", file.ID, "err", err)

		return
	}

	if err := u.publisher.Publish(ctx, string(body)); err != nil {
		logger.Warn("failed to publish ingest event", "id", file.ID, "err", err)
	}
}
