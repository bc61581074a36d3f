// Package fsa defines the standard action shape used by slimasync lifecycle
// actions and a predicate to recognise it.
//
// A standard action has a string type and no fields other than type,
// payload, error and meta. The type may be empty.
package fsa

// Action is a standard action. When Error is true, Payload holds the error.
type Action struct {
	Type    string         `json:"type"`
	Payload any            `json:"payload,omitempty"`
	Error   bool           `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Field names of the standard shape.
const (
	KeyType    = "type"
	KeyPayload = "payload"
	KeyError   = "error"
	KeyMeta    = "meta"
)

// IsFSA reports whether v is a standard action. Accepted are Action values,
// non-nil *Action values, and map[string]any records with a string type and
// only standard keys.
func IsFSA(v any) bool {
	switch a := v.(type) {
	case Action:
		return true
	case *Action:
		return a != nil
	case map[string]any:
		if a == nil {
			return false
		}
		if _, ok := a[KeyType].(string); !ok {
			return false
		}
		for k := range a {
			if !isValidKey(k) {
				return false
			}
		}
		if e, ok := a[KeyError]; ok {
			if _, ok := e.(bool); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsError reports whether v is a standard action flagged as an error.
func IsError(v any) bool {
	if !IsFSA(v) {
		return false
	}
	switch a := v.(type) {
	case Action:
		return a.Error
	case *Action:
		return a.Error
	case map[string]any:
		e, _ := a[KeyError].(bool)
		return e
	}
	return false
}

// TypeOf returns the type of a standard action, or "" if v is not one.
func TypeOf(v any) string {
	if !IsFSA(v) {
		return ""
	}
	switch a := v.(type) {
	case Action:
		return a.Type
	case *Action:
		return a.Type
	case map[string]any:
		return a[KeyType].(string)
	}
	return ""
}

func isValidKey(k string) bool {
	switch k {
	case KeyType, KeyPayload, KeyError, KeyMeta:
		return true
	}
	return false
}

// From converts a standard action of any accepted shape to an Action.
func From(v any) (Action, bool) {
	if !IsFSA(v) {
		return Action{}, false
	}
	switch a := v.(type) {
	case Action:
		return a, true
	case *Action:
		return *a, true
	case map[string]any:
		out := Action{Type: a[KeyType].(string), Payload: a[KeyPayload]}
		out.Error, _ = a[KeyError].(bool)
		out.Meta, _ = a[KeyMeta].(map[string]any)
		return out, true
	}
	return Action{}, false
}
