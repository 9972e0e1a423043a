// Package mysql keeps the file catalog in a MySQL compatible database
// (MySQL, TiDB).
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"postbridge/internal/domain/model"
	"postbridge/internal/domain/repository/database"
	"postbridge/pkg/logger"
)

const schema = `CREATE TABLE IF NOT EXISTS files (
	id         CHAR(64)     NOT NULL PRIMARY KEY,
	digest     CHAR(64)     NOT NULL,
	filename   VARCHAR(255) NOT NULL,
	mime_type  VARCHAR(64)  NOT NULL,
	alt_text   TEXT         NOT NULL,
	width      INT          NOT NULL DEFAULT 0,
	height     INT          NOT NULL DEFAULT 0,
	size       BIGINT       NOT NULL,
	created_at DATETIME(3)  NOT NULL,
	INDEX idx_files_digest (digest)
)`

const selectFile = `SELECT id, digest, filename, mime_type, alt_text, width, height, size, created_at
	FROM files WHERE id = ?`

var tracer = otel.Tracer("postbridge/mysql")

// Catalog implements both database.Retriever and database.Writer. Rows are
// keyed by record id, which is derived from the composite key, so a composite
// key lookup is a primary key lookup.
type Catalog struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func Connect(ctx context.Context, cfg Config) (*Catalog, error) {
	dsn, err := driver.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}

	dsn.ParseTime = true
	dsn.Loc = time.UTC

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}

	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Millisecond)

	c := &Catalog{db: db, queryTimeout: time.Duration(cfg.QueryTimeout) * time.Millisecond}
	if c.queryTimeout <= 0 {
		c.queryTimeout = 5 * time.Second
	}

	qCtx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	if err := db.PingContext(qCtx); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(qCtx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create files table: %w", err)
	}

	logger.Info("connected to mysql catalog", "addr", dsn.Addr, "db", dsn.DBName)

	return c, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) FindByID(ctx context.Context, id string) (*model.File, error) {
	ctx, span := tracer.Start(ctx, "mysql.find_file", trace.WithAttributes(attribute.String("file_id", id)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	var f model.File
	err := c.db.QueryRowContext(ctx, selectFile, id).Scan(
		&f.ID,
		&f.Digest,
		&f.Filename,
		&f.MimeType,
		&f.AltText,
		&f.Width,
		&f.Height,
		&f.Size,
		&f.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("found", false))

		return nil, database.ErrNotFound
	}

	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query file: %w", err)
	}

	span.SetAttributes(attribute.Bool("found", true))

	return &f, nil
}

func (c *Catalog) FindByCompositeKey(ctx context.Context, key model.CompositeKey) (*model.File, error) {
	f, err := c.FindByID(ctx, key.ID())
	if err != nil {
		return nil, err
	}

	if f.Key() != key {
		return nil, fmt.Errorf("record %s does not match its key", f.ID)
	}

	return f, nil
}

// Insert writes file unless its id is already present, then returns whatever
// row is stored under that id.
func (c *Catalog) Insert(ctx context.Context, file *model.File) (*model.File, bool, error) {
	ctx, span := tracer.Start(ctx, "mysql.insert_file",
		trace.WithAttributes(
			attribute.String("file_id", file.ID),
			attribute.String("digest", file.Digest),
			attribute.Int64("file_size", file.Size),
		),
	)
	defer span.End()

	query := `INSERT IGNORE INTO files
		(id, digest, filename, mime_type, alt_text, width, height, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	qCtx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	res, err := c.db.ExecContext(qCtx, query,
		file.ID, file.Digest, file.Filename, file.MimeType, file.AltText,
		file.Width, file.Height, file.Size, file.CreatedAt.UTC(),
	)
	if err != nil {
		span.RecordError(err)

		return nil, false, fmt.Errorf("failed to insert file: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)

		return nil, false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if n == 1 {
		span.SetAttributes(attribute.Bool("inserted", true))

		return file, true, nil
	}

	span.SetAttributes(attribute.Bool("inserted", false))

	stored, err := c.FindByID(ctx, file.ID)
	if err != nil {
		return nil, false, err
	}

	return stored, false, nil
}
