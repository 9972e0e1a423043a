package database

import (
	"context"

	"postbridge/internal/domain/model"
)

// Writer inserts records. Inserting an id that already exists returns the
// stored record with inserted false instead of failing.
type Writer interface {
	Insert(ctx context.Context, file *model.File) (stored *model.File, inserted bool, err error)
}
