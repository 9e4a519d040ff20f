// Package lock provides the advisory per-slot lock the booking flow
// runs its check-then-write pair under. The lock narrows the window in
// which two writers can race on the same client/date/time; the store
// itself enforces nothing.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotAcquired = errors.New("slot lock not acquired")

// Locker guards a critical section keyed by an arbitrary string.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// SlotKey builds the lock key for one client's slot on a date.
func SlotKey(phone, date, time string) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", phone, date, time)
}
