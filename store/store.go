// Package store is a minimal unidirectional state container that hosts
// slimasync middleware.
//
// Actions pass through the middleware chain and end in a Reducer that
// computes the next state. Middleware receives an API whose Dispatch
// re-enters the full chain, so lifecycle actions emitted by an Async
// instance are seen by every middleware.
package store

import (
	"context"
	"sync"

	"github.com/fxsml/slimasync"
)

// Reducer computes the next state. It runs under the store lock and must
// neither dispatch nor call GetState.
type Reducer func(state any, action any) any

// Store holds the state and the composed dispatch function.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	state    any
	reducer  Reducer
	dispatch slimasync.DispatchFunc

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()
}

// New creates a store with the given reducer, initial state and middleware.
// The first middleware is the outermost.
func New(reducer Reducer, initial any, middleware ...slimasync.Middleware) *Store {
	s := &Store{
		state:   initial,
		reducer: reducer,
		subs:    make(map[int]func()),
	}
	s.dispatch = slimasync.ApplyMiddleware(api{s}, s.reduce, middleware...)
	return s
}

// Dispatch sends action through the middleware chain. The result is the
// value returned by the outermost middleware; for actions reaching the
// reducer it is the action itself.
func (s *Store) Dispatch(ctx context.Context, action any) (any, error) {
	return s.dispatch(ctx, action)
}

// GetState returns the current state.
func (s *Store) GetState() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called after every reduced action and
// returns a function that removes it.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) reduce(_ context.Context, action any) (any, error) {
	s.mu.Lock()
	s.state = s.reducer(s.state, action)
	s.mu.Unlock()

	s.notify()
	return action, nil
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// api is the slimasync.API handed to middleware.
type api struct {
	s *Store
}

func (a api) Dispatch(ctx context.Context, action any) (any, error) {
	return a.s.Dispatch(ctx, action)
}

func (a api) GetState() any {
	return a.s.GetState()
}
