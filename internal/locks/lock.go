package locks

import (
	"context"
	"sync"
)

type Lock interface {
	WithLock(ctx context.Context, f func() error) (bool, error)
}

type runLock struct {
	mu sync.Mutex
}

// NewRunLock returns an in-process lock. A deployment runs exactly one
// engine instance, so process-local mutual exclusion is enough to keep
// sync runs from overlapping.
func NewRunLock() Lock {
	return &runLock{}
}

func (l *runLock) WithLock(ctx context.Context, f func() error) (bool, error) {
	if !l.mu.TryLock() {
		return false, nil
	}
	defer l.mu.Unlock()

	return true, f()
}
