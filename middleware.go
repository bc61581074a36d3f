package slimasync

import (
	"context"
)

// DispatchFunc sends an action down the pipeline.
type DispatchFunc func(ctx context.Context, action any) (any, error)

// API is the part of the host pipeline a middleware may use. Both methods
// must be safe for concurrent use.
type API interface {
	// Dispatch sends an action through the whole pipeline.
	Dispatch(ctx context.Context, action any) (any, error)
	// GetState returns a snapshot of the current state.
	GetState() any
}

// Middleware wraps the downstream DispatchFunc of a pipeline.
type Middleware func(api API) func(next DispatchFunc) DispatchFunc

// ApplyMiddleware wraps base with the given middleware. For middlewares
// A, B, C the execution flow is A→B→C→base.
func ApplyMiddleware(api API, base DispatchFunc, middleware ...Middleware) DispatchFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		base = middleware[i](api)(base)
	}
	return base
}

// Async expands async-describing actions into pending, success and error
// lifecycle actions.
type Async struct {
	cfg     *Config
	opts    options
	log     *lifecycleLogger
	tracker *callTracker
}

// New returns an instance in explicit mode: only actions carrying types are
// expanded.
func New(opts ...Option) *Async {
	return newAsync(nil, opts)
}

// NewWithConfig returns an instance in convention mode: only actions
// carrying a typePrefix are expanded, using the suffixes of cfg. cfg is not
// validated until the first such action arrives.
func NewWithConfig(cfg Config, opts ...Option) *Async {
	return newAsync(&cfg, opts)
}

func newAsync(cfg *Config, opts []Option) *Async {
	o := parseOptions(opts)
	return &Async{
		cfg:     cfg,
		opts:    o,
		log:     newLifecycleLogger(o.logger, o.logConfig),
		tracker: newCallTracker(),
	}
}

// Middleware returns the pipeline middleware of this instance.
func (a *Async) Middleware() Middleware {
	return func(api API) func(next DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action any) (any, error) {
				return a.handle(ctx, api, next, action)
			}
		}
	}
}

// handle returns next's result for actions it does not expand, a *Call for
// expanded ones and nil when shouldCallAPI declined the call.
func (a *Async) handle(ctx context.Context, api API, next DispatchFunc, action any) (any, error) {
	f, ok := extract(action)
	if !ok {
		return next(ctx, action)
	}
	if present(f.typePrefix) && !present(f.callAPI) {
		return next(ctx, action)
	}
	ok, err := eligible(f, a.cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return next(ctx, action)
	}

	m, err := resolveMode(f, a.cfg)
	if err != nil {
		return nil, err
	}
	req, err := validate(f, m)
	if err != nil {
		return nil, err
	}

	if !req.shouldCallAPI(api.GetState()) {
		return nil, nil
	}
	return a.run(ctx, api, next, action, req), nil
}

// InFlight returns the number of calls that have not settled yet.
func (a *Async) InFlight() int64 {
	return a.tracker.inFlight()
}

// Drain blocks until no call is in flight or ctx is done. Calls started
// while draining are waited for as well.
func (a *Async) Drain(ctx context.Context) error {
	for {
		select {
		case <-a.tracker.idle():
			if a.tracker.inFlight() == 0 {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
