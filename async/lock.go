package async

import "context"

// Lock is a context-aware mutual exclusion lock. Unlike sync.Mutex, Acquire
// can be abandoned via context cancellation. The lock is not reentrant: a
// holder that acquires again deadlocks (or fails via its context).
type Lock struct {
	ch chan struct{}
}

// NewLock returns an unlocked Lock.
func NewLock() *Lock {
	l := &Lock{ch: make(chan struct{}, 1)}
	l.ch <- struct{}{}
	return l
}

// Acquire suspends the caller until the lock is available or the context is
// done, in which case the context's error is returned and the lock is not
// held.
func (l *Lock) Acquire(ctx context.Context) error {
	select {
	case <-l.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire acquires the lock without blocking, reporting success.
func (l *Lock) TryAcquire() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}

// Release frees the lock. It never blocks. Releasing an unheld lock panics,
// as with sync.Mutex.
func (l *Lock) Release() {
	select {
	case l.ch <- struct{}{}:
	default:
		panic("async: release of unheld Lock")
	}
}
