// Package cloudevents maps standard actions to CloudEvents and back, and
// provides middleware that forwards dispatched actions to a CloudEvents
// sender.
//
// An action becomes an event with the action type as event type and a JSON
// body of the form {"payload": ..., "meta": ...}. Error actions carry the
// extension attribute "fsaerror" and their payload is encoded as
// {"message": err.Error()}.
package cloudevents

import (
	"errors"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/types"
	"github.com/google/uuid"

	"github.com/fxsml/slimasync/fsa"
)

// ExtensionError marks events created from error actions.
const ExtensionError = "fsaerror"

// DefaultSource is used when no source is configured.
const DefaultSource = "/slimasync"

// ErrNilEvent is returned when converting a nil event.
var ErrNilEvent = errors.New("cloudevents: nil event")

// RemoteError is the payload of an error action rebuilt from an event.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

type body struct {
	Payload any            `json:"payload,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
}

// ToEvent converts a standard action into a CloudEvent with a fresh ID.
func ToEvent(a fsa.Action, source string) (*cloudevents.Event, error) {
	if a.Type == "" {
		return nil, fmt.Errorf("cloudevents: action has no type")
	}
	if source == "" {
		source = DefaultSource
	}

	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(source)
	e.SetType(a.Type)
	e.SetTime(time.Now().UTC())

	b := body{Payload: a.Payload, Meta: a.Meta}
	if a.Error {
		e.SetExtension(ExtensionError, true)
		if err, ok := a.Payload.(error); ok {
			b.Payload = errorBody{Message: err.Error()}
		}
	}
	if err := e.SetData(cloudevents.ApplicationJSON, b); err != nil {
		return nil, fmt.Errorf("cloudevents: set data: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("cloudevents: %w", err)
	}
	return &e, nil
}

// FromEvent converts a CloudEvent back into a standard action. The payload
// of an error event is returned as *RemoteError.
func FromEvent(e *cloudevents.Event) (fsa.Action, error) {
	if e == nil {
		return fsa.Action{}, ErrNilEvent
	}
	a := fsa.Action{Type: e.Type()}
	if a.Type == "" {
		return fsa.Action{}, fmt.Errorf("cloudevents: event %s has no type", e.ID())
	}

	if v, ok := e.Extensions()[ExtensionError]; ok {
		flag, err := types.ToBool(v)
		if err != nil {
			return fsa.Action{}, fmt.Errorf("cloudevents: extension %s: %w", ExtensionError, err)
		}
		a.Error = flag
	}

	if len(e.Data()) == 0 {
		return a, nil
	}
	var b body
	if err := e.DataAs(&b); err != nil {
		return fsa.Action{}, fmt.Errorf("cloudevents: decode data: %w", err)
	}
	a.Payload = b.Payload
	a.Meta = b.Meta
	if a.Error {
		a.Payload = remoteError(b.Payload)
	}
	return a, nil
}

func remoteError(payload any) error {
	switch p := payload.(type) {
	case map[string]any:
		if msg, ok := p["message"].(string); ok {
			return &RemoteError{Message: msg}
		}
	case string:
		return &RemoteError{Message: p}
	}
	return &RemoteError{Message: fmt.Sprint(payload)}
}
