package cloudevents

import (
	"context"
	"errors"
	"sync"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/protocol"

	"github.com/fxsml/slimasync"
	"github.com/fxsml/slimasync/fsa"
)

// mockSender implements protocol.Sender for testing.
type mockSender struct {
	mu      sync.Mutex
	results []protocol.Result
	events  []*cloudevents.Event
}

func (m *mockSender) Send(ctx context.Context, msg binding.Message, transformers ...binding.Transformer) error {
	e, err := binding.ToEvent(ctx, msg, transformers...)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	if len(m.results) == 0 {
		return protocol.ResultACK
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r
}

func (m *mockSender) sent() []*cloudevents.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*cloudevents.Event(nil), m.events...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// host is a stateless pipeline whose base returns the action.
type host struct {
	dispatch slimasync.DispatchFunc
}

func (h *host) Dispatch(ctx context.Context, action any) (any, error) {
	return h.dispatch(ctx, action)
}

func (h *host) GetState() any {
	return nil
}

func chain(mw slimasync.Middleware) slimasync.DispatchFunc {
	h := &host{}
	base := func(ctx context.Context, action any) (any, error) { return action, nil }
	h.dispatch = slimasync.ApplyMiddleware(h, base, mw)
	return h.dispatch
}

func TestForward(t *testing.T) {
	t.Run("forwards standard actions", func(t *testing.T) {
		sender := &mockSender{}
		dispatch := chain(Forward(sender, ForwardConfig{Source: "/test", Logger: nopLogger{}}))

		if _, err := dispatch(context.Background(), fsa.Action{Type: "A", Payload: map[string]any{"n": 1}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := dispatch(context.Background(), map[string]any{"type": "B"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := dispatch(context.Background(), map[string]any{"type": "C", "callAPI": 1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sent := sender.sent()
		if len(sent) != 2 {
			t.Fatalf("expected 2 events, got %d", len(sent))
		}
		if sent[0].Type() != "A" || sent[1].Type() != "B" || sent[0].Source() != "/test" {
			t.Errorf("unexpected events %v, %v", sent[0], sent[1])
		}
	})

	t.Run("empty type is not sent", func(t *testing.T) {
		sender := &mockSender{}
		var handled int
		dispatch := chain(Forward(sender, ForwardConfig{
			Logger:       nopLogger{},
			ErrorHandler: func(fsa.Action, error) { handled++ },
		}))
		if _, err := dispatch(context.Background(), fsa.Action{Payload: map[string]any{"n": 1}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sender.sent()) != 0 || handled != 0 {
			t.Errorf("expected nothing sent or handled, got %d sent, %d handled", len(sender.sent()), handled)
		}
	})

	t.Run("match filters types", func(t *testing.T) {
		sender := &mockSender{}
		dispatch := chain(Forward(sender, ForwardConfig{
			Match:  func(typ string) bool { return typ == "KEEP" },
			Logger: nopLogger{},
		}))
		_, _ = dispatch(context.Background(), fsa.Action{Type: "DROP"})
		_, _ = dispatch(context.Background(), fsa.Action{Type: "KEEP"})
		if sent := sender.sent(); len(sent) != 1 || sent[0].Type() != "KEEP" {
			t.Errorf("expected only KEEP, got %v", sent)
		}
	})

	t.Run("send failure does not fail dispatch", func(t *testing.T) {
		sender := &mockSender{results: []protocol.Result{protocol.NewReceipt(false, "unavailable")}}
		var handled []string
		dispatch := chain(Forward(sender, ForwardConfig{
			Logger: nopLogger{},
			ErrorHandler: func(a fsa.Action, err error) {
				handled = append(handled, a.Type)
			},
		}))
		result, err := dispatch(context.Background(), fsa.Action{Type: "A"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fsa.TypeOf(result) != "A" {
			t.Errorf("expected downstream result, got %v", result)
		}
		if len(handled) != 1 || handled[0] != "A" {
			t.Errorf("expected error handler call, got %v", handled)
		}
	})

	t.Run("downstream error skips forwarding", func(t *testing.T) {
		sender := &mockSender{}
		downstream := errors.New("rejected")
		mw := Forward(sender, ForwardConfig{Logger: nopLogger{}})
		dispatch := mw(&host{})(func(context.Context, any) (any, error) { return nil, downstream })
		if _, err := dispatch(context.Background(), fsa.Action{Type: "A"}); !errors.Is(err, downstream) {
			t.Errorf("expected downstream error, got %v", err)
		}
		if len(sender.sent()) != 0 {
			t.Error("expected nothing sent")
		}
	})
}

func TestReceiver(t *testing.T) {
	var got []fsa.Action
	receive := Receiver(func(ctx context.Context, action any) (any, error) {
		a := action.(fsa.Action)
		if a.Type == "REJECT" {
			return nil, errors.New("rejected")
		}
		got = append(got, a)
		return a, nil
	})

	e, err := ToEvent(fsa.Action{Type: "REMOTE", Payload: map[string]any{"k": "v"}}, "/peer")
	if err != nil {
		t.Fatal(err)
	}
	if result := receive(context.Background(), *e); !protocol.IsACK(result) {
		t.Errorf("expected ACK, got %v", result)
	}
	if len(got) != 1 || got[0].Type != "REMOTE" {
		t.Errorf("unexpected dispatched actions %+v", got)
	}

	reject, _ := ToEvent(fsa.Action{Type: "REJECT"}, "/peer")
	if result := receive(context.Background(), *reject); protocol.IsACK(result) {
		t.Error("expected NACK for failed dispatch")
	}

	empty := cloudevents.NewEvent()
	if result := receive(context.Background(), empty); protocol.IsACK(result) {
		t.Error("expected NACK for event without type")
	}
}
