package commands

import (
	"context"
	"fmt"

	"postbridge/config"
	"postbridge/internal/domain/repository/blob"
	"postbridge/internal/domain/repository/database"
	mongodb "postbridge/internal/infrastructure/database"
	"postbridge/internal/infrastructure/filesystem"
	"postbridge/internal/infrastructure/minio"
	"postbridge/internal/infrastructure/mysql"
)

type catalog struct {
	database.Retriever
	database.Writer
	close func() error
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendFilesystem:
		return filesystem.New(cfg.Filesystem)

	case config.BackendMinIO:
		client, err := minio.New(cfg.MinIOClient)
		if err != nil {
			return nil, err
		}

		if err := client.EnsureBucket(ctx, cfg.MinIOStore.Bucket); err != nil {
			return nil, err
		}

		return minio.NewStore(client.MinioClient, cfg.MinIOStore), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func newCatalog(ctx context.Context, cfg *config.Config) (*catalog, error) {
	switch cfg.Catalog.Backend {
	case config.BackendMongo:
		db, err := mongodb.Connect(cfg.DBConfig)
		if err != nil {
			return nil, err
		}

		return &catalog{
			Retriever: mongodb.NewFileRetriever(db),
			Writer:    mongodb.NewFileWriter(db),
			close:     db.Stop,
		}, nil

	case config.BackendMySQL:
		db, err := mysql.Connect(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}

		return &catalog{Retriever: db, Writer: db, close: db.Close}, nil
	}

	return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
}
