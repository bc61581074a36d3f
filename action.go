package slimasync

import (
	"context"
)

// Keys recognised on untyped map[string]any actions.
const (
	KeyTypePrefix    = "typePrefix"
	KeyTypes         = "types"
	KeyCallAPI       = "callAPI"
	KeyFormatData    = "formatData"
	KeyShouldCallAPI = "shouldCallAPI"
	KeyPayload       = "payload"
	KeyMeta          = "meta"
)

// CallFunc performs the asynchronous operation described by an action.
// The context carries the dispatching caller's values but is never canceled
// by the middleware.
type CallFunc func(ctx context.Context) (any, error)

// FormatFunc turns the resolved response into a payload fragment. The result
// must be an object (map with string keys).
type FormatFunc func(response any) any

// ShouldCallFunc gates the call on the current pipeline state.
type ShouldCallFunc func(state any) bool

// APIAction is the typed form of an async-describing action.
//
// In explicit mode Types holds the [pending, success, error] identifiers.
// In convention mode TypePrefix is combined with the instance suffixes.
type APIAction struct {
	TypePrefix    string
	Types         []string
	CallAPI       CallFunc
	FormatData    FormatFunc
	ShouldCallAPI ShouldCallFunc
	Payload       map[string]any
	Meta          map[string]any
}

// fields is the normalised view of an incoming action. A nil entry means the
// field is absent.
type fields struct {
	typePrefix    any
	types         any
	callAPI       any
	formatData    any
	shouldCallAPI any
	payload       any
	meta          any
}

// extract normalises the supported action shapes. The second return value is
// false for values that can never describe an API call.
func extract(action any) (fields, bool) {
	switch a := action.(type) {
	case APIAction:
		return fromTyped(&a), true
	case *APIAction:
		if a == nil {
			return fields{}, false
		}
		return fromTyped(a), true
	case map[string]any:
		return fields{
			typePrefix:    a[KeyTypePrefix],
			types:         a[KeyTypes],
			callAPI:       a[KeyCallAPI],
			formatData:    a[KeyFormatData],
			shouldCallAPI: a[KeyShouldCallAPI],
			payload:       a[KeyPayload],
			meta:          a[KeyMeta],
		}, true
	default:
		return fields{}, false
	}
}

// fromTyped only copies set fields so that nil funcs and maps stay absent
// instead of becoming typed nils inside an interface.
func fromTyped(a *APIAction) fields {
	var f fields
	if a.TypePrefix != "" {
		f.typePrefix = a.TypePrefix
	}
	if a.Types != nil {
		f.types = a.Types
	}
	if a.CallAPI != nil {
		f.callAPI = a.CallAPI
	}
	if a.FormatData != nil {
		f.formatData = a.FormatData
	}
	if a.ShouldCallAPI != nil {
		f.shouldCallAPI = a.ShouldCallAPI
	}
	if a.Payload != nil {
		f.payload = a.Payload
	}
	if a.Meta != nil {
		f.meta = a.Meta
	}
	return f
}

// present reports whether a field counts as set. Empty strings are absent.
func present(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}
