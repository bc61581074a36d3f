package slimasync

import (
	"context"
	"sync"
)

// Call is the outcome of one async action. It resolves with the pipeline
// state read after the success action, or rejects with the reason that was
// also carried by the error action.
//
// A Call cannot be canceled. Giving up on Wait leaves the call running.
type Call struct {
	done  chan struct{}
	once  sync.Once
	state any
	err   error
}

func newCall() *Call {
	return &Call{done: make(chan struct{})}
}

func (c *Call) settle(state any, err error) {
	c.once.Do(func() {
		c.state = state
		c.err = err
		close(c.done)
	})
}

// Done returns a channel that is closed once the call has settled.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call settles or ctx is done. In the latter case it
// returns ctx.Err() and the call keeps running.
func (c *Call) Wait(ctx context.Context) (any, error) {
	select {
	case <-c.done:
		return c.state, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the call
// is still in flight.
func (c *Call) Result() (state any, ok bool, err error) {
	select {
	case <-c.done:
		return c.state, true, c.err
	default:
		return nil, false, nil
	}
}
