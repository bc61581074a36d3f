package cloudevents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/protocol"

	"github.com/fxsml/slimasync"
	"github.com/fxsml/slimasync/fsa"
)

// ForwardConfig configures Forward.
type ForwardConfig struct {
	// Source is the event source attribute (default: DefaultSource).
	Source string
	// Match selects the action types to forward (default: all).
	Match func(actionType string) bool
	// ErrorHandler is called on conversion and send errors (default: no-op).
	ErrorHandler func(action fsa.Action, err error)
	// Logger is used for logging (default: slog.Default()).
	Logger slimasync.Logger
}

// Forward returns middleware that sends every standard action reaching it
// to sender after the rest of the chain has handled it. Other actions and
// standard actions with an empty type pass through untouched. Send failures are logged and reported to the error
// handler; they never fail the dispatch.
func Forward(sender protocol.Sender, cfg ForwardConfig) slimasync.Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	match := cfg.Match
	if match == nil {
		match = func(string) bool { return true }
	}

	send := func(ctx context.Context, a fsa.Action) error {
		event, err := ToEvent(a, cfg.Source)
		if err != nil {
			return err
		}
		result := sender.Send(ctx, binding.ToMessage(event))
		if protocol.IsACK(result) {
			return nil
		}
		return fmt.Errorf("cloudevents: send %s: %w", event.ID(), result)
	}

	return func(api slimasync.API) func(next slimasync.DispatchFunc) slimasync.DispatchFunc {
		return func(next slimasync.DispatchFunc) slimasync.DispatchFunc {
			return func(ctx context.Context, action any) (any, error) {
				result, err := next(ctx, action)
				if err != nil {
					return result, err
				}
				a, ok := fsa.From(action)
				if !ok || a.Type == "" || !match(a.Type) {
					return result, nil
				}
				if err := send(ctx, a); err != nil {
					logger.Error("Action forward failed",
						"component", "cloudevents",
						"type", a.Type,
						"error", err)
					if cfg.ErrorHandler != nil {
						cfg.ErrorHandler(a, err)
					}
				}
				return result, nil
			}
		}
	}
}
