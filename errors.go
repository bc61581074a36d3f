package slimasync

import (
	"errors"
)

var (
	// ErrTypes indicates that an explicit-mode action does not carry exactly
	// three string type identifiers.
	ErrTypes = errors.New("slimasync: types must be a list of three strings")
	// ErrTypePrefix indicates that a convention-mode typePrefix is not a string.
	ErrTypePrefix = errors.New("slimasync: typePrefix must be a string")
	// ErrCallAPI indicates that callAPI is missing or not a function.
	ErrCallAPI = errors.New("slimasync: callAPI must be a function")
	// ErrFormatData indicates that formatData is not a function.
	ErrFormatData = errors.New("slimasync: formatData must be a function")
	// ErrShouldCallAPI indicates that shouldCallAPI is not a function.
	ErrShouldCallAPI = errors.New("slimasync: shouldCallAPI must be a function")
	// ErrPayload indicates that payload is not an object.
	ErrPayload = errors.New("slimasync: payload must be an object")
	// ErrMeta indicates that meta is not an object.
	ErrMeta = errors.New("slimasync: meta must be an object")
	// ErrOptions indicates a malformed suffix configuration.
	ErrOptions = errors.New("slimasync: pendingSuffix, successSuffix and errorSuffix must be strings")
	// ErrFormatDataReturn indicates that formatData did not return an object.
	// It is delivered through Call, never returned synchronously.
	ErrFormatDataReturn = errors.New("slimasync: formatData must return an object")
)

// ValidationError reports which action field broke which rule.
// Use errors.Is with one of the Err* sentinels to branch on the kind.
type ValidationError struct {
	// Field is the action key that failed validation, or "options" for
	// configuration errors.
	Field string
	// Err is the sentinel describing the violated rule.
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was returned synchronously because an
// action or the instance configuration was malformed.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
