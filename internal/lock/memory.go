package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLocker is a keyed mutex for a single process. The ttl is ignored:
// holders always release through the returned func.
type MemoryLocker struct {
	slots sync.Map // key -> chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	val, _ := l.slots.LoadOrStore(key, make(chan struct{}, 1))
	slot := val.(chan struct{})

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() { once.Do(func() { <-slot }) }, nil
}
