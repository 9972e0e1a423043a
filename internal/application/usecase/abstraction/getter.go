package abstraction

import (
	"context"

	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/model"
)

// Getter defines the interface for reading record metadata.
type Getter interface {
	GetFile(ctx context.Context, id string) (dto.FileDescriptor, error)
	Describe(f *model.File) dto.FileDescriptor
}
