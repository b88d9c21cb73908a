package locks

import (
	"context"
	"sync"
)

// LocalLocker serializes per-user work within one process. Used for
// single-node deployments and in tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[int64]struct{})}
}

func (l *LocalLocker) TryLock(_ context.Context, userID int64) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[userID]; taken {
		return nil, false, nil
	}
	l.held[userID] = struct{}{}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, userID)
	}
	return release, true, nil
}
