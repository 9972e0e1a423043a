package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"postbridge/internal/domain/model"
	"postbridge/internal/domain/repository/database"
)

type FileRetriever struct {
	db *Database
}

func NewFileRetriever(db *Database) *FileRetriever {
	return &FileRetriever{db: db}
}

func (r *FileRetriever) FindByID(ctx context.Context, id string) (*model.File, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *FileRetriever) FindByCompositeKey(ctx context.Context, key model.CompositeKey) (*model.File, error) {
	return r.findOne(ctx, bson.M{
		"digest":    key.Digest,
		"filename":  key.Filename,
		"alt_text":  key.AltText,
		"width":     key.Width,
		"height":    key.Height,
		"mime_type": key.MimeType,
	})
}

func (r *FileRetriever) findOne(ctx context.Context, filter bson.M) (*model.File, error) {
	ctx, cancel := context.WithTimeout(ctx, r.db.QueryTimeout)
	defer cancel()

	var file model.File
	err := r.db.files().FindOne(ctx, filter).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &file, nil
}
