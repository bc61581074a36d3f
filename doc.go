// Package slimasync provides middleware that turns a single "API action"
// into an asynchronous request lifecycle of standard actions.
//
// An API action names three lifecycle types, either explicitly or through a
// type prefix combined with configured suffixes, and a callAPI function.
// The middleware dispatches a pending action, runs callAPI in the
// background, and dispatches exactly one success or error action when it
// settles. Any other action passes through unchanged.
//
// The module is organised as:
//
//   - [slimasync] (this package): the middleware, its config and logging
//   - [fsa]: the standard action shape and its predicate
//   - [store]: a minimal state container that hosts middleware
//   - [config]: YAML and environment loading for [Config]
//   - [cloudevents]: forwarding actions as CloudEvents
//   - [journal]: recording and replaying actions in a Redis stream
//
// [slimasync]: https://pkg.go.dev/github.com/fxsml/slimasync
// [fsa]: https://pkg.go.dev/github.com/fxsml/slimasync/fsa
// [store]: https://pkg.go.dev/github.com/fxsml/slimasync/store
// [config]: https://pkg.go.dev/github.com/fxsml/slimasync/config
// [cloudevents]: https://pkg.go.dev/github.com/fxsml/slimasync/cloudevents
// [journal]: https://pkg.go.dev/github.com/fxsml/slimasync/journal
//
// # Quick Start
//
//	async := slimasync.NewWithConfig(slimasync.DefaultConfig())
//	s := store.New(reducer, initialState, async.Middleware())
//
//	result, err := s.Dispatch(ctx, &slimasync.APIAction{
//		TypePrefix: "REQUEST_DATA",
//		CallAPI: func(ctx context.Context) (any, error) {
//			return fetchData(ctx)
//		},
//	})
//	// REQUEST_DATA_PENDING has been dispatched.
//	state, err := result.(*slimasync.Call).Wait(ctx)
//	// REQUEST_DATA_SUCCESS or REQUEST_DATA_ERROR has been dispatched.
//
// # Action Modes
//
// Explicit mode lists the three types:
//
//	slimasync.APIAction{Types: []string{"FETCH_PENDING", "FETCH_SUCCESS", "FETCH_FAILURE"}, ...}
//
// Convention mode derives them from TypePrefix and the Config suffixes
// (_PENDING, _SUCCESS and _ERROR by default). An action with TypePrefix is
// only handled by an instance created with NewWithConfig; instances from
// New pass it through.
//
// Actions may also be given as map[string]any records using the keys
// typePrefix, types, callAPI, formatData, shouldCallAPI, payload and meta.
//
// # Lifecycle
//
//   - pending: {type, payload}, dispatched before the call starts
//   - success: {type, payload: payload merged with formatData(response), meta}
//   - error:   {type, payload: err, error: true, meta}
//
// Each lifecycle action is checked with the Conformer (fsa.IsFSA by
// default). When the check fails the original action is forwarded to the
// next middleware instead.
//
// # Errors
//
// Malformed API actions fail synchronously with a *ValidationError that
// wraps one of the sentinel errors (ErrTypes, ErrCallAPI, ...). Errors from
// callAPI, a non-object formatData result and recovered panics reject the
// Call and become the error action payload.
package slimasync
