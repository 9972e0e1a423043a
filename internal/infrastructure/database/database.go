package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postbridge/pkg/logger"
)

const FileCollection = "file"

type Database struct {
	DBName       string
	QueryTimeout time.Duration
	Client       *mongo.Client
}

func Connect(cfg Config) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectionTimeout)*time.Millisecond)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(time.Duration(cfg.ConnectionTimeout) * time.Millisecond)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	qCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.QueryTimeout)*time.Millisecond)
	defer cancel()

	if err := client.Ping(qCtx, nil); err != nil {
		return nil, err
	}

	db := &Database{
		Client:       client,
		DBName:       cfg.DBName,
		QueryTimeout: time.Duration(cfg.QueryTimeout) * time.Millisecond,
	}

	if err := initFileCollection(db); err != nil {
		return nil, err
	}

	logger.Info("connected to mongo catalog", "db", cfg.DBName)

	return db, nil
}

func (db *Database) files() *mongo.Collection {
	return db.Client.Database(db.DBName).Collection(FileCollection)
}

func initFileCollection(db *Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), db.QueryTimeout)
	defer cancel()

	collections, err := db.Client.Database(db.DBName).ListCollectionNames(ctx, bson.M{"name": FileCollection})
	if err != nil {
		return err
	}
	if len(collections) > 0 {
		return nil // already exists
	}

	collOpts := options.CreateCollection().SetValidator(bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"_id", "digest", "filename", "mime_type", "created_at"},
			"properties": bson.M{
				"_id": bson.M{
					"bsonType":    "string",
					"pattern":     "^[a-f0-9]{64}$",
					"description": "must be the 64-character record id",
				},
				"digest": bson.M{
					"bsonType":    "string",
					"pattern":     "^[a-f0-9]{64}$",
					"description": "must be the hex sha256 of the blob",
				},
				"filename":   bson.M{"bsonType": "string", "minLength": 1},
				"mime_type":  bson.M{"enum": []string{"image/png", "image/jpeg"}},
				"alt_text":   bson.M{"bsonType": "string"},
				"width":      bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				"height":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				"size":       bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	})

	err = db.Client.Database(db.DBName).CreateCollection(ctx, FileCollection, collOpts)
	if err != nil {
		return err
	}

	_, err = db.files().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "digest", Value: 1},
			{Key: "filename", Value: 1},
			{Key: "alt_text", Value: 1},
			{Key: "width", Value: 1},
			{Key: "height", Value: 1},
			{Key: "mime_type", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("composite_key"),
	})

	return err
}

func (db *Database) Stop() error {
	if err := db.Client.Disconnect(context.Background()); err != nil {
		return err
	}

	return nil
}
