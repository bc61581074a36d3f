// Package config loads slimasync configuration from YAML files and
// environment variables.
//
// Environment variable names follow the pattern:
//
//	{Prefix}_{STAGE}_{FIELD}
//
// Go field names are converted from CamelCase to UPPER_SNAKE_CASE, so an
// instance configured under stage "orders" reads:
//
//	SLIMASYNC_ORDERS_PENDING_SUFFIX=_PENDING
//	SLIMASYNC_ORDERS_SUCCESS_SUFFIX=_SUCCESS
//	SLIMASYNC_ORDERS_ERROR_SUFFIX=_ERROR
//	SLIMASYNC_ORDERS_FLATTEN=true
//
// Supported field types: string, bool, int*, time.Duration. Other fields and
// unexported fields are skipped.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Loader overlays environment variables on configuration structs.
type Loader struct {
	// Prefix for environment variable names.
	// Default: "SLIMASYNC".
	Prefix string

	// lookup overrides os.LookupEnv for testing.
	lookup func(string) (string, bool)
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return "SLIMASYNC"
	}
	return l.Prefix
}

func (l Loader) lookupEnv(key string) (string, bool) {
	if l.lookup != nil {
		return l.lookup(key)
	}
	return os.LookupEnv(key)
}

// Apply sets every field of the struct pointed to by dst for which an
// environment variable exists. Other fields keep their values.
func (l Loader) Apply(stage string, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: dst must be a pointer to a struct, got %T", dst)
	}
	return walk(l.root(stage), v.Elem().Type(), func(key string, index []int) error {
		raw, ok := l.lookupEnv(key)
		if !ok {
			return nil
		}
		return setField(v.Elem().FieldByIndex(index), raw, key)
	})
}

// Keys returns the environment variable names Apply would read for dst,
// which may be a struct or a pointer to one.
func (l Loader) Keys(stage string, dst any) []string {
	t := reflect.TypeOf(dst)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	_ = walk(l.root(stage), t, func(key string, _ []int) error {
		keys = append(keys, key)
		return nil
	})
	return keys
}

func (l Loader) root(stage string) string {
	if stage == "" {
		return l.prefix()
	}
	return l.prefix() + "_" + normalizeStage(stage)
}

// walk calls fn for every supported exported field of t. Named struct
// fields add a path segment, embedded ones are flattened.
func walk(prefix string, t reflect.Type, fn func(key string, index []int) error) error {
	var visit func(prefix string, t reflect.Type, parent []int) error
	visit = func(prefix string, t reflect.Type, parent []int) error {
		for i := range t.NumField() {
			field := t.Field(i)
			index := append(append([]int(nil), parent...), i)

			key := prefix + "_" + toUpperSnake(field.Name)
			if field.Anonymous {
				key = prefix
			}

			switch {
			case !field.IsExported() && !(field.Anonymous && field.Type.Kind() == reflect.Struct):
				continue
			case field.Type == durationType:
			case field.Type.Kind() == reflect.Struct:
				if err := visit(key, field.Type, index); err != nil {
					return err
				}
				continue
			case !isSupportedKind(field.Type.Kind()):
				continue
			}
			if err := fn(key, index); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(prefix, t, nil)
}

func isSupportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func setField(v reflect.Value, raw, key string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetInt(int64(d))
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetInt(n)
	}
	return nil
}

// normalizeStage uppercases letters, maps hyphens, spaces and underscores
// to underscores and drops everything else.
func normalizeStage(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(unicode.ToUpper(r))
		case r == '-' || r == ' ' || r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// toUpperSnake converts a Go CamelCase field name to UPPER_SNAKE_CASE.
//
//	PendingSuffix → PENDING_SUFFIX
//	HTTPClient    → HTTP_CLIENT
func toUpperSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				b.WriteRune('_')
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
