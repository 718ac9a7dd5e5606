package async

import "context"

// Semaphore is a counting semaphore bounding concurrency to a fixed
// capacity N >= 1: the (N+1)-th concurrent Acquire suspends until a
// Release.
type Semaphore struct {
	ch chan struct{}
}

// NewSemaphore returns a semaphore with the given capacity. It panics if
// capacity < 1.
func NewSemaphore(capacity int) *Semaphore {
	if capacity < 1 {
		panic("async: semaphore capacity must be >= 1")
	}
	s := &Semaphore{ch: make(chan struct{}, capacity)}
	for i := 0; i < capacity; i++ {
		s.ch <- struct{}{}
	}
	return s
}

// Acquire takes one slot, suspending until one is free or the context is
// done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking, reporting success.
func (s *Semaphore) TryAcquire() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Release returns one slot. It never blocks. Releasing more slots than were
// acquired panics.
func (s *Semaphore) Release() {
	select {
	case s.ch <- struct{}{}:
	default:
		panic("async: semaphore released more times than acquired")
	}
}
