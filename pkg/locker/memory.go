package locker

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local locker for single-node deployments and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]time.Time),
	}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	expiry, held := l.locks[key]
	if held && now.Before(expiry) {
		return nil, false, nil
	}

	l.locks[key] = now.Add(ttl)

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.locks, key)
	}

	return release, true, nil
}
