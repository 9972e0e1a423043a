// Package keylock serializes work per key while letting different keys run in
// parallel.
//
// Locks are created on first use through an atomic insert-if-absent on the
// registry map, so two goroutines racing on an unseen key always share one
// lock. Entries are never removed; the registry grows with the number of
// distinct keys seen by the process.
package keylock

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/semaphore"
)

type Registry struct {
	locks *xsync.MapOf[string, *semaphore.Weighted]
}

func New() *Registry {
	return &Registry{
		locks: xsync.NewMapOf[string, *semaphore.Weighted](),
	}
}

// WithLock runs fn while holding the lock for key. A caller whose ctx ends
// while waiting returns ctx.Err() without ever owning the lock. The lock is
// released on every exit path of fn, panics included, and fn's error is
// returned as is.
func (r *Registry) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l := r.lockFor(key)

	if err := l.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.Release(1)

	return fn(ctx)
}

// Len reports how many keys have a lock.
func (r *Registry) Len() int {
	return r.locks.Size()
}

func (r *Registry) lockFor(key string) *semaphore.Weighted {
	l, _ := r.locks.LoadOrCompute(key, func() *semaphore.Weighted {
		return semaphore.NewWeighted(1)
	})

	return l
}
