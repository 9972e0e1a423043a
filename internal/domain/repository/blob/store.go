package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Store persists raw bytes once per digest. Callers serialize access to a
// digest; implementations must still never expose a partial blob.
type Store interface {
	// Write stores data under digest unless a blob already exists, in which
	// case it reports false and leaves the existing blob untouched.
	Write(ctx context.Context, digest string, data []byte) (bool, error)
	Read(ctx context.Context, digest string) ([]byte, error)
	Exists(ctx context.Context, digest string) (bool, error)
	PathFor(digest string) string
}
