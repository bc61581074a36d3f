// Package journal records standard actions in a Redis stream and replays
// them into a dispatcher.
//
// Each action is one stream entry with the fields type, error, payload and
// meta. Payload and meta are JSON encoded; error payloads are stored as
// {"message": err.Error()}.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/fxsml/slimasync"
	"github.com/fxsml/slimasync/fsa"
)

// DefaultStream is the stream key used when Config.Stream is empty.
const DefaultStream = "slimasync:actions"

const (
	fieldType    = "type"
	fieldError   = "error"
	fieldPayload = "payload"
	fieldMeta    = "meta"
)

// Config configures a Journal.
type Config struct {
	// Stream is the Redis stream key (default: DefaultStream).
	Stream string
	// MaxLen caps the stream length; 0 means unbounded.
	MaxLen int64
	// Logger is used by Middleware (default: slog.Default()).
	Logger slimasync.Logger
}

// Entry is an action read back from the stream.
type Entry struct {
	ID     string
	Action fsa.Action
}

// Journal appends actions to and reads actions from a Redis stream.
type Journal struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	logger slimasync.Logger
}

// New creates a Journal on client.
func New(client redis.UniversalClient, cfg Config) *Journal {
	stream := cfg.Stream
	if stream == "" {
		stream = DefaultStream
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{client: client, stream: stream, maxLen: cfg.MaxLen, logger: logger}
}

// Append writes a to the stream and returns the entry ID.
func (j *Journal) Append(ctx context.Context, a fsa.Action) (string, error) {
	if a.Type == "" {
		return "", fmt.Errorf("journal: action has no type")
	}
	payload := a.Payload
	if err, ok := payload.(error); ok && a.Error {
		payload = map[string]string{"message": err.Error()}
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("journal: encode payload: %w", err)
	}
	m, err := json.Marshal(a.Meta)
	if err != nil {
		return "", fmt.Errorf("journal: encode meta: %w", err)
	}

	id, err := j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		MaxLen: j.maxLen,
		Values: map[string]any{
			fieldType:    a.Type,
			fieldError:   strconv.FormatBool(a.Error),
			fieldPayload: string(p),
			fieldMeta:    string(m),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("journal: xadd %s: %w", j.stream, err)
	}
	return id, nil
}

// Range returns up to count entries from the start of the stream. A count
// of 0 or less returns all entries.
func (j *Journal) Range(ctx context.Context, count int64) ([]Entry, error) {
	var (
		msgs []redis.XMessage
		err  error
	)
	if count > 0 {
		msgs, err = j.client.XRangeN(ctx, j.stream, "-", "+", count).Result()
	} else {
		msgs, err = j.client.XRange(ctx, j.stream, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("journal: xrange %s: %w", j.stream, err)
	}

	entries := make([]Entry, 0, len(msgs))
	for _, msg := range msgs {
		a, err := decode(msg.Values)
		if err != nil {
			return nil, fmt.Errorf("journal: entry %s: %w", msg.ID, err)
		}
		entries = append(entries, Entry{ID: msg.ID, Action: a})
	}
	return entries, nil
}

// Replay dispatches every recorded action in stream order and returns the
// number dispatched. It stops at the first dispatch error.
func (j *Journal) Replay(ctx context.Context, dispatch slimasync.DispatchFunc) (int, error) {
	entries, err := j.Range(ctx, 0)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if _, err := dispatch(ctx, e.Action); err != nil {
			return i, fmt.Errorf("journal: replay %s: %w", e.ID, err)
		}
	}
	return len(entries), nil
}

// Middleware returns middleware that appends every standard action with a
// non-empty type reaching it after the rest of the chain has handled it.
// Append failures are logged and never fail the dispatch.
func (j *Journal) Middleware() slimasync.Middleware {
	return func(api slimasync.API) func(next slimasync.DispatchFunc) slimasync.DispatchFunc {
		return func(next slimasync.DispatchFunc) slimasync.DispatchFunc {
			return func(ctx context.Context, action any) (any, error) {
				result, err := next(ctx, action)
				if err != nil {
					return result, err
				}
				if a, ok := fsa.From(action); ok && a.Type != "" {
					if _, err := j.Append(ctx, a); err != nil {
						j.logger.Error("Action journal append failed",
							"component", "journal",
							"type", a.Type,
							"error", err)
					}
				}
				return result, nil
			}
		}
	}
}

func decode(values map[string]any) (fsa.Action, error) {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}

	a := fsa.Action{Type: str(fieldType)}
	if a.Type == "" {
		return fsa.Action{}, fmt.Errorf("missing %s", fieldType)
	}
	if v := str(fieldError); v != "" {
		flag, err := strconv.ParseBool(v)
		if err != nil {
			return fsa.Action{}, fmt.Errorf("%s: %w", fieldError, err)
		}
		a.Error = flag
	}
	if v := str(fieldPayload); v != "" {
		if err := json.Unmarshal([]byte(v), &a.Payload); err != nil {
			return fsa.Action{}, fmt.Errorf("%s: %w", fieldPayload, err)
		}
	}
	if v := str(fieldMeta); v != "" {
		if err := json.Unmarshal([]byte(v), &a.Meta); err != nil {
			return fsa.Action{}, fmt.Errorf("%s: %w", fieldMeta, err)
		}
	}
	if a.Error {
		a.Payload = errors.New(message(a.Payload))
	}
	return a, nil
}

func message(payload any) string {
	if m, ok := payload.(map[string]any); ok {
		if s, ok := m["message"].(string); ok {
			return s
		}
	}
	return fmt.Sprint(payload)
}
