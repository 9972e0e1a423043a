package usecase

import (
	"context"
	"errors"
	"fmt"

	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/model"
	"postbridge/internal/domain/repository/database"
)

type Getter struct {
	retriever      database.Retriever
	defaultAddress string
}

func NewGetter(retriever database.Retriever, address string) *Getter {
	return &Getter{
		retriever:      retriever,
		defaultAddress: address,
	}
}

// GetFile returns the descriptor of a record without touching its blob.
func (g *Getter) GetFile(ctx context.Context, id string) (dto.FileDescriptor, error) {
	file, err := g.retriever.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return dto.FileDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err != nil {
		return dto.FileDescriptor{}, fmt.Errorf("lookup file: %w", err)
	}

	return toDescriptor(file, g.defaultAddress), nil
}

// Describe builds the public descriptor of f.
func (g *Getter) Describe(f *model.File) dto.FileDescriptor {
	return toDescriptor(f, g.defaultAddress)
}
