package lock

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"equipbook/internal/domain"
	"equipbook/internal/metrics"

	"github.com/rs/zerolog"
)

const recoverAfter = time.Minute

// FailoverLocker prefers the primary locker and degrades to the fallback
// while the primary keeps failing, probing it again once a minute.
type FailoverLocker struct {
	primary   domain.Locker
	fallback  domain.Locker
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverLocker(primary, fallback domain.Locker, logger *zerolog.Logger) *FailoverLocker {
	return &FailoverLocker{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (l *FailoverLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if !l.isDown.Load() || time.Since(time.Unix(0, l.lastCheck.Load())) > recoverAfter {
		release, err := l.primary.Acquire(ctx, key, ttl)
		if err == nil {
			if l.isDown.CompareAndSwap(true, false) {
				l.logger.Info().Msg("Primary booking lock recovered")
			}
			return release, nil
		}
		if errors.Is(err, ErrNotAcquired) {
			return nil, err
		}
		if !l.isDown.Swap(true) {
			l.logger.Error().Err(err).Msg("Primary booking lock failed, falling back to in-process lock")
		}
		l.lastCheck.Store(time.Now().UnixNano())
		metrics.IncLockFallback()
	}

	return l.fallback.Acquire(ctx, key, ttl)
}
