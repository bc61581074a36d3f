package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxsml/slimasync"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

type retryConfig struct {
	Attempts int
	Backoff  time.Duration
}

type sinkConfig struct {
	URL     string
	Enabled bool
	Retry   retryConfig
	secret  string
}

type embedded struct {
	Stream string
}

type withEmbed struct {
	embedded
	MaxLen int64
}

func TestLoader_Apply(t *testing.T) {
	t.Run("flat and nested", func(t *testing.T) {
		l := Loader{lookup: envMap(map[string]string{
			"SLIMASYNC_ORDERS_URL":            "http://localhost:8080",
			"SLIMASYNC_ORDERS_ENABLED":        "true",
			"SLIMASYNC_ORDERS_RETRY_ATTEMPTS": "3",
			"SLIMASYNC_ORDERS_RETRY_BACKOFF":  "250ms",
			"SLIMASYNC_ORDERS_SECRET":         "ignored",
		})}
		var cfg sinkConfig
		if err := l.Apply("orders", &cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != "http://localhost:8080" || !cfg.Enabled {
			t.Errorf("unexpected flat fields %+v", cfg)
		}
		if cfg.Retry.Attempts != 3 || cfg.Retry.Backoff != 250*time.Millisecond {
			t.Errorf("unexpected nested fields %+v", cfg.Retry)
		}
		if cfg.secret != "" {
			t.Error("unexported field must be skipped")
		}
	})

	t.Run("embedded struct is flattened", func(t *testing.T) {
		l := Loader{Prefix: "APP", lookup: envMap(map[string]string{
			"APP_STREAM":  "actions",
			"APP_MAX_LEN": "1000",
		})}
		var cfg withEmbed
		if err := l.Apply("", &cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Stream != "actions" || cfg.MaxLen != 1000 {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("missing keys keep values", func(t *testing.T) {
		l := Loader{lookup: envMap(nil)}
		cfg := sinkConfig{URL: "keep"}
		if err := l.Apply("orders", &cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != "keep" {
			t.Errorf("expected URL to be kept, got %q", cfg.URL)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		for key, value := range map[string]string{
			"SLIMASYNC_X_ENABLED":        "maybe",
			"SLIMASYNC_X_RETRY_ATTEMPTS": "three",
			"SLIMASYNC_X_RETRY_BACKOFF":  "soon",
		} {
			l := Loader{lookup: envMap(map[string]string{key: value})}
			var cfg sinkConfig
			if err := l.Apply("x", &cfg); err == nil {
				t.Errorf("%s=%s: expected error", key, value)
			}
		}
	})

	t.Run("non-pointer", func(t *testing.T) {
		if err := (Loader{}).Apply("x", sinkConfig{}); err == nil {
			t.Error("expected error for non-pointer dst")
		}
	})
}

func TestLoader_Keys(t *testing.T) {
	keys := Loader{}.Keys("my-stage", slimasync.Config{})
	want := []string{
		"SLIMASYNC_MY_STAGE_PENDING_SUFFIX",
		"SLIMASYNC_MY_STAGE_SUCCESS_SUFFIX",
		"SLIMASYNC_MY_STAGE_ERROR_SUFFIX",
		"SLIMASYNC_MY_STAGE_FLATTEN",
	}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

func TestToUpperSnake(t *testing.T) {
	tests := map[string]string{
		"URL":           "URL",
		"PendingSuffix": "PENDING_SUFFIX",
		"HTTPClient":    "HTTP_CLIENT",
		"MaxLen":        "MAX_LEN",
		"Retry2Times":   "RETRY2_TIMES",
	}
	for in, want := range tests {
		if got := toUpperSnake(in); got != want {
			t.Errorf("toUpperSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := map[string]string{
		"orders":   "ORDERS",
		"my-stage": "MY_STAGE",
		"a b":      "A_B",
		"v1.2":     "V12",
		"Under_Ok": "UNDER_OK",
	}
	for in, want := range tests {
		if got := normalizeStage(in); got != want {
			t.Errorf("normalizeStage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		cfg, err := Parse([]byte("pendingSuffix: .start\nsuccessSuffix: .done\nerrorSuffix: .fail\nflatten: true\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.PendingSuffix != ".start" || cfg.SuccessSuffix != ".done" || cfg.ErrorSuffix != ".fail" || !cfg.Flatten {
			t.Errorf("unexpected config %+v", cfg)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("absent keys use defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("errorSuffix: _FAILURE\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.PendingSuffix != "_PENDING" || cfg.SuccessSuffix != "_SUCCESS" || cfg.ErrorSuffix != "_FAILURE" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := Parse(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg != slimasync.DefaultConfig() {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("wrong type is deferred", func(t *testing.T) {
		cfg, err := Parse([]byte("pendingSuffix: [a, b]\n"))
		if err != nil {
			t.Fatalf("parse must not fail on shape errors: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, slimasync.ErrOptions) {
			t.Errorf("expected ErrOptions, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		if _, err := Parse([]byte("pendingSuffix: [\n")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slimasync.yaml")
	if err := os.WriteFile(path, []byte("successSuffix: _OK\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := Loader{lookup: envMap(map[string]string{
		"SLIMASYNC_ORDERS_ERROR_SUFFIX": "_KO",
		"SLIMASYNC_ORDERS_FLATTEN":      "1",
	})}
	cfg, err := l.Load(path, "orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PendingSuffix != "_PENDING" || cfg.SuccessSuffix != "_OK" || cfg.ErrorSuffix != "_KO" || !cfg.Flatten {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml"), "orders"); err == nil {
		t.Error("expected error for missing file")
	}
}
