package slimasync

import (
	"fmt"
)

// Config enables convention mode: lifecycle types are built by appending the
// suffixes to an action's typePrefix.
type Config struct {
	// PendingSuffix is appended to typePrefix for the pending action.
	PendingSuffix string `yaml:"pendingSuffix"`
	// SuccessSuffix is appended to typePrefix for the success action.
	SuccessSuffix string `yaml:"successSuffix"`
	// ErrorSuffix is appended to typePrefix for the error action.
	ErrorSuffix string `yaml:"errorSuffix"`

	// Flatten places the formatted response fields at the top level of the
	// success action next to type and meta. Such an action is not standard
	// shaped, so the conformance check is skipped for it.
	Flatten bool `yaml:"flatten"`

	// shape holds a problem found by ConfigFromMap. It is reported by
	// Validate, which the middleware only runs once convention mode is used.
	shape error
}

// DefaultConfig returns the conventional _PENDING/_SUCCESS/_ERROR suffixes.
func DefaultConfig() Config {
	return Config{
		PendingSuffix: "_PENDING",
		SuccessSuffix: "_SUCCESS",
		ErrorSuffix:   "_ERROR",
	}
}

// ConfigFromMap builds a Config from an untyped record using the keys
// pendingSuffix, successSuffix, errorSuffix and flatten. A missing or
// non-string suffix does not fail here; it surfaces as ErrOptions from
// Validate. flatten is optional.
func ConfigFromMap(m map[string]any) Config {
	var c Config
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"pendingSuffix", &c.PendingSuffix},
		{"successSuffix", &c.SuccessSuffix},
		{"errorSuffix", &c.ErrorSuffix},
	} {
		v, ok := m[f.key]
		if !ok {
			c.shape = fmt.Errorf("%s is missing", f.key)
			continue
		}
		s, ok := v.(string)
		if !ok {
			c.shape = fmt.Errorf("%s is %T", f.key, v)
			continue
		}
		*f.dst = s
	}
	if v, ok := m["flatten"]; ok {
		b, ok := v.(bool)
		if !ok {
			c.shape = fmt.Errorf("flatten is %T", v)
		}
		c.Flatten = b
	}
	return c
}

// Validate reports a suffix that was missing or not a string when the
// Config was built by ConfigFromMap. Any suffix values of a typed Config are
// accepted, including empty and repeated ones.
func (c Config) Validate() error {
	if c.shape != nil {
		return newValidationError("options", fmt.Errorf("%w: %v", ErrOptions, c.shape))
	}
	return nil
}
