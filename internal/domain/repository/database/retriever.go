package database

import (
	"context"

	"postbridge/internal/domain/model"
)

type Retriever interface {
	FindByID(ctx context.Context, id string) (*model.File, error)
	FindByCompositeKey(ctx context.Context, key model.CompositeKey) (*model.File, error)
}
