// Package semaphore provides a counting semaphore used to bound concurrency
// along both pipeline axes: streams within a run and external calls within a
// stage.
package semaphore

import "context"

type Semaphore struct {
	ch chan struct{}
}

// New creates a semaphore with the given capacity. Capacity below 1 is
// clamped to 1.
func New(capacity int) *Semaphore {
	if capacity < 1 {
		capacity = 1
	}
	return &Semaphore{ch: make(chan struct{}, capacity)}
}

// Acquire takes a slot, blocking until one is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot acquired with Acquire.
func (s *Semaphore) Release() {
	<-s.ch
}
