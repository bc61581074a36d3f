package slimasync_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fxsml/slimasync"
	"github.com/fxsml/slimasync/fsa"
)

// recorder is a host pipeline that records every dispatched and forwarded
// action. Its state is the type of the last dispatched standard action.
type recorder struct {
	mu         sync.Mutex
	dispatched []any
	forwarded  []any
	state      any
}

func (r *recorder) Dispatch(_ context.Context, action any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched = append(r.dispatched, action)
	if typ := fsa.TypeOf(action); typ != "" {
		r.state = typ
	} else if m, ok := action.(map[string]any); ok {
		r.state = m["type"]
	}
	return action, nil
}

func (r *recorder) GetState() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *recorder) next(_ context.Context, action any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forwarded = append(r.forwarded, action)
	return "next", nil
}

func (r *recorder) Dispatched() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.dispatched...)
}

func (r *recorder) Forwarded() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.forwarded...)
}

func (r *recorder) handler(a *slimasync.Async) slimasync.DispatchFunc {
	return a.Middleware()(r)(r.next)
}

func waitCall(t *testing.T, result any) (any, error) {
	t.Helper()
	call, ok := result.(*slimasync.Call)
	if !ok {
		t.Fatalf("expected *slimasync.Call, got %T", result)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	state, err := call.Wait(ctx)
	if err == context.DeadlineExceeded {
		t.Fatal("call did not settle")
	}
	return state, err
}

func resolve(v any) slimasync.CallFunc {
	return func(context.Context) (any, error) { return v, nil }
}

func reject(err error) slimasync.CallFunc {
	return func(context.Context) (any, error) { return nil, err }
}

// quiet disables logging to keep test output readable.
var quiet = slimasync.WithLogConfig(slimasync.LogConfig{Disabled: true})
