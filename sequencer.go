package slimasync

import (
	"context"
	"maps"
	"time"

	"github.com/fxsml/slimasync/fsa"
)

// run emits the pending action, starts the call and returns its handle.
// Success or error is emitted exactly once from the call's goroutine.
func (a *Async) run(ctx context.Context, api API, next DispatchFunc, original any, req *request) *Call {
	pending := fsa.Action{Type: req.types.pending, Payload: maps.Clone(req.payload)}
	a.emit(ctx, api, next, original, pending, true)
	a.log.logPending(req.types.pending)

	call := newCall()
	callCtx := context.WithoutCancel(ctx)
	a.tracker.enter()
	go func() {
		defer a.tracker.exit()
		start := time.Now()

		var data map[string]any
		err := protect(func() error {
			response, err := req.callAPI(callCtx)
			if err != nil {
				return err
			}
			formatted, ok := asObject(req.formatData(response))
			if !ok {
				return ErrFormatDataReturn
			}
			data = formatted
			return nil
		})
		if err != nil {
			a.fail(callCtx, api, next, original, req, err)
			a.log.logFailure(req.types.error, err, time.Since(start))
			call.settle(nil, err)
			return
		}

		a.succeed(callCtx, api, next, original, req, data)
		a.log.logSuccess(req.types.success, time.Since(start))
		call.settle(api.GetState(), nil)
	}()
	return call
}

func (a *Async) succeed(ctx context.Context, api API, next DispatchFunc, original any, req *request, data map[string]any) {
	payload := maps.Clone(req.payload)
	maps.Copy(payload, data)

	if a.cfg != nil && a.cfg.Flatten {
		flat := make(map[string]any, len(payload)+2)
		maps.Copy(flat, payload)
		flat[fsa.KeyType] = req.types.success
		flat[fsa.KeyMeta] = req.meta
		a.emit(ctx, api, next, original, flat, false)
		return
	}

	a.emit(ctx, api, next, original, fsa.Action{
		Type:    req.types.success,
		Payload: payload,
		Meta:    req.meta,
	}, true)
}

func (a *Async) fail(ctx context.Context, api API, next DispatchFunc, original any, req *request, reason error) {
	a.emit(ctx, api, next, original, fsa.Action{
		Type:    req.types.error,
		Payload: reason,
		Error:   true,
		Meta:    req.meta,
	}, true)
}

// emit dispatches a lifecycle action, or forwards the original action to
// next when the lifecycle action fails the conformance check. Results of
// either path are not used.
func (a *Async) emit(ctx context.Context, api API, next DispatchFunc, original, action any, check bool) {
	typ := typeField(action)
	if check && !a.opts.conform(action) {
		a.log.logFallback(typ)
		if _, err := next(ctx, original); err != nil {
			a.log.logDispatchError(typ, err)
		}
		return
	}
	if _, err := api.Dispatch(ctx, action); err != nil {
		a.log.logDispatchError(typ, err)
	}
}

func typeField(action any) string {
	switch a := action.(type) {
	case fsa.Action:
		return a.Type
	case map[string]any:
		t, _ := a[fsa.KeyType].(string)
		return t
	}
	return ""
}
