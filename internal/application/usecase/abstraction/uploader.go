package abstraction

import (
	"context"

	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/model"
)

type Uploader interface {
	ResolveOrCreate(ctx context.Context, in dto.UploadInput) (*model.File, error)
}
