package slimasync

import (
	"sync"
)

// callTracker counts in-flight calls. idle() returns a channel that is
// closed while no call is outstanding.
//
// Thread-safe for concurrent use.
type callTracker struct {
	mu     sync.Mutex
	count  int64
	idleCh chan struct{}
}

func newCallTracker() *callTracker {
	ch := make(chan struct{})
	close(ch)
	return &callTracker{idleCh: ch}
}

func (t *callTracker) enter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		t.idleCh = make(chan struct{})
	}
	t.count++
}

func (t *callTracker) exit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count--
	if t.count == 0 {
		close(t.idleCh)
	}
}

func (t *callTracker) idle() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idleCh
}

func (t *callTracker) inFlight() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
