package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"postbridge/internal/domain/repository/blob"
	"postbridge/pkg/digest"
)

const tmpDir = ".tmp"

// Store keeps blobs under root/ab/cd/<digest>. Bytes are staged in root/.tmp
// and renamed into place, so a digest path only ever holds a complete blob.
type Store struct {
	root string
}

func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Root, tmpDir), 0o750); err != nil {
		return nil, fmt.Errorf("create blob root %q: %w", cfg.Root, err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}

	return &Store{root: root}, nil
}

func (s *Store) PathFor(d string) string {
	if len(d) < 4 {
		return filepath.Join(s.root, d)
	}

	return filepath.Join(s.root, d[0:2], d[2:4], d)
}

func (s *Store) Exists(_ context.Context, d string) (bool, error) {
	if !digest.Valid(d) {
		return false, fmt.Errorf("invalid digest %q", d)
	}

	_, err := os.Stat(s.PathFor(d))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return err == nil, err
}

func (s *Store) Write(ctx context.Context, d string, data []byte) (bool, error) {
	exists, err := s.Exists(ctx, d)
	if err != nil {
		return false, err
	}

	if exists {
		return false, nil
	}

	tmpPath := filepath.Join(s.root, tmpDir, uuid.NewString())
	if err := writeTemp(tmpPath, data); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return false, err
	}

	dest := s.PathFor(d)
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return false, fmt.Errorf("mkdir blob dir: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return false, fmt.Errorf("rename blob: %w", err)
	}

	return true, nil
}

func (s *Store) Read(ctx context.Context, d string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !digest.Valid(d) {
		return nil, fmt.Errorf("invalid digest %q", d)
	}

	data, err := os.ReadFile(s.PathFor(d))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", blob.ErrNotFound, d)
	}

	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return data, nil
}

// writeTemp writes data, flushes it to disk and makes the file read-only.
func writeTemp(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("write tmp: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("sync tmp: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("flush tmp: %w", err)
	}

	if err := os.Chmod(path, 0o440); err != nil {
		return fmt.Errorf("chmod tmp: %w", err)
	}

	return nil
}
