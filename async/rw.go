package async

import (
	"context"
	"sync"
)

// RWController admits multiple concurrent readers or one exclusive writer,
// with writer preference: once a writer is queued, new readers block until
// that writer has run, so a steady reader stream cannot starve writers.
//
// All waits are context-aware. The controller is not reentrant and upgrade
// (read lock to write lock) is not supported.
type RWController struct {
	mu           sync.Mutex
	readers      int
	writerActive bool
	waitWriters  []chan struct{}
	waitReaders  []chan struct{}
}

// NewRWController returns an idle controller.
func NewRWController() *RWController {
	return &RWController{}
}

// RLock acquires shared read access, suspending while a writer is active or
// queued.
func (c *RWController) RLock(ctx context.Context) error {
	c.mu.Lock()
	if !c.writerActive && len(c.waitWriters) == 0 {
		c.readers++
		c.mu.Unlock()
		return nil
	}
	grant := make(chan struct{})
	c.waitReaders = append(c.waitReaders, grant)
	c.mu.Unlock()

	select {
	case <-grant:
		return nil
	case <-ctx.Done():
		if c.abandonReader(grant) {
			return ctx.Err()
		}
		// The grant raced the cancellation; hand the slot back.
		c.RUnlock()
		return ctx.Err()
	}
}

// RUnlock releases shared read access.
func (c *RWController) RUnlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readers <= 0 {
		panic("async: RUnlock without matching RLock")
	}
	c.readers--
	c.handoffLocked()
}

// WLock acquires exclusive write access, suspending until all active
// readers drain.
func (c *RWController) WLock(ctx context.Context) error {
	c.mu.Lock()
	if !c.writerActive && c.readers == 0 && len(c.waitWriters) == 0 {
		c.writerActive = true
		c.mu.Unlock()
		return nil
	}
	grant := make(chan struct{})
	c.waitWriters = append(c.waitWriters, grant)
	c.mu.Unlock()

	select {
	case <-grant:
		return nil
	case <-ctx.Done():
		if c.abandonWriter(grant) {
			return ctx.Err()
		}
		c.WUnlock()
		return ctx.Err()
	}
}

// WUnlock releases exclusive write access. The next queued writer runs
// first; with no writers queued, all waiting readers are admitted at once.
func (c *RWController) WUnlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.writerActive {
		panic("async: WUnlock without matching WLock")
	}
	c.writerActive = false
	c.handoffLocked()
}

// handoffLocked grants the controller to the next waiter(s). Caller holds
// c.mu.
func (c *RWController) handoffLocked() {
	if c.writerActive || c.readers > 0 {
		// Still held; queued writers wait for readers to drain to zero.
		return
	}
	if len(c.waitWriters) > 0 {
		grant := c.waitWriters[0]
		c.waitWriters = c.waitWriters[1:]
		c.writerActive = true
		close(grant)
		return
	}
	if len(c.waitReaders) > 0 {
		c.readers += len(c.waitReaders)
		for _, grant := range c.waitReaders {
			close(grant)
		}
		c.waitReaders = nil
	}
}

// abandonReader removes a parked reader grant, reporting whether it was
// still queued.
func (c *RWController) abandonReader(grant chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, g := range c.waitReaders {
		if g == grant {
			c.waitReaders = append(c.waitReaders[:i], c.waitReaders[i+1:]...)
			return true
		}
	}
	return false
}

// abandonWriter removes a parked writer grant, reporting whether it was
// still queued. Removing a queued writer may unblock parked readers.
func (c *RWController) abandonWriter(grant chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, g := range c.waitWriters {
		if g == grant {
			c.waitWriters = append(c.waitWriters[:i], c.waitWriters[i+1:]...)
			c.handoffLocked()
			return true
		}
	}
	return false
}
