package slimasync

import (
	"context"
	"maps"
)

// request is a validated async action, captured by value.
type request struct {
	types         lifecycleTypes
	callAPI       CallFunc
	formatData    FormatFunc
	shouldCallAPI ShouldCallFunc
	payload       map[string]any
	meta          map[string]any
}

// validate applies the field rules in their fixed order and fills defaults.
// The type identifier rules have already run as part of resolveMode.
func validate(f fields, m mode) (*request, error) {
	r := &request{types: m.resolve()}

	switch fn := f.callAPI.(type) {
	case CallFunc:
		r.callAPI = fn
	case func(context.Context) (any, error):
		r.callAPI = fn
	case func() (any, error):
		r.callAPI = func(context.Context) (any, error) { return fn() }
	}
	if r.callAPI == nil {
		return nil, newValidationError(KeyCallAPI, ErrCallAPI)
	}

	switch fn := f.formatData.(type) {
	case nil:
		r.formatData = identity
	case FormatFunc:
		r.formatData = fn
	case func(any) any:
		r.formatData = fn
	}
	if r.formatData == nil {
		return nil, newValidationError(KeyFormatData, ErrFormatData)
	}

	switch fn := f.shouldCallAPI.(type) {
	case nil:
		r.shouldCallAPI = always
	case ShouldCallFunc:
		r.shouldCallAPI = fn
	case func(any) bool:
		r.shouldCallAPI = fn
	}
	if r.shouldCallAPI == nil {
		return nil, newValidationError(KeyShouldCallAPI, ErrShouldCallAPI)
	}

	payload, ok := optionalObject(f.payload)
	if !ok {
		return nil, newValidationError(KeyPayload, ErrPayload)
	}
	r.payload = payload

	meta, ok := optionalObject(f.meta)
	if !ok {
		return nil, newValidationError(KeyMeta, ErrMeta)
	}
	r.meta = meta

	return r, nil
}

func identity(response any) any { return response }

func always(any) bool { return true }

// optionalObject returns a private copy of v, or an empty object if v is
// absent.
func optionalObject(v any) (map[string]any, bool) {
	if v == nil {
		return map[string]any{}, true
	}
	m, ok := asObject(v)
	if !ok {
		return nil, false
	}
	return maps.Clone(m), true
}

// asObject accepts maps keyed by string. nil and nil maps are empty objects.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		if m == nil {
			return map[string]any{}, true
		}
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}
