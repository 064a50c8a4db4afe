package kitchen

import "sync"

// cancelSignal is a single-shot, set-once, lock-free wait signal: one
// order's courier waits on it, and setting it (from the allocator or
// the cleanup sweeper, always while the global lock is held) never
// blocks and is always safe to call twice (spec §5 "Cancellation and
// timeouts").
type cancelSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newCancelSignal() *cancelSignal {
	return &cancelSignal{ch: make(chan struct{})}
}

// set signals the waiter. Safe to call more than once or concurrently;
// only the first call has any effect.
func (s *cancelSignal) set() {
	s.once.Do(func() { close(s.ch) })
}

func (s *cancelSignal) wait() <-chan struct{} {
	return s.ch
}
