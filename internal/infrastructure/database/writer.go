package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"postbridge/internal/domain/model"
)

type FileWriter struct {
	db *Database
}

func NewFileWriter(db *Database) *FileWriter {
	return &FileWriter{db: db}
}

// Insert stores file. If a record with the same id is already present it is
// returned instead.
func (w *FileWriter) Insert(ctx context.Context, file *model.File) (*model.File, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, w.db.QueryTimeout)
	defer cancel()

	_, err := w.db.files().InsertOne(ctx, file)
	if err == nil {
		return file, true, nil
	}

	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, err
	}

	var stored model.File
	if err := w.db.files().FindOne(ctx, bson.M{"_id": file.ID}).Decode(&stored); err != nil {
		return nil, false, err
	}

	return &stored, false, nil
}
