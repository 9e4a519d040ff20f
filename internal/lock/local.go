package lock

import (
	"context"
	"sync"
)

type localLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker returns an in-process Locker for tests and the memory
// store driver. Contended keys fail fast with ErrNotAcquired, matching
// the Redis locker's behavior.
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]bool)}
}

func (l *localLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.held[key] {
		l.mu.Unlock()
		return ErrNotAcquired
	}
	l.held[key] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}
