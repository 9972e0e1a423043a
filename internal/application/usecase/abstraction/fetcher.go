package abstraction

import (
	"context"

	"postbridge/internal/domain/dto"
)

type Fetcher interface {
	FetchProcessed(ctx context.Context, id string, bounds *dto.Bounds) (*dto.ProcessedFile, error)
	FetchForPlatform(ctx context.Context, id, platform string) (*dto.ProcessedFile, error)
}
