package slimasync

import (
	"log/slog"
	"strings"
	"time"
)

// LogLevel represents the severity level for logging messages.
type LogLevel string

const (
	// LogLevelDebug is used for detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is used for general information messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is used for warning conditions.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is used for error conditions.
	LogLevelError LogLevel = "error"
)

// Logger defines an interface for logging at different severity levels.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, args ...any)
	// Info logs a message at info level.
	Info(msg string, args ...any)
	// Warn logs a message at warning level.
	Warn(msg string, args ...any)
	// Error logs a message at error level.
	Error(msg string, args ...any)
}

// LogConfig controls how an Async instance reports lifecycle events.
// Unset fields fall back to the defaults.
type LogConfig struct {
	// Args are additional arguments to include in all log messages.
	Args []any

	// LevelPending is used when the pending action is emitted.
	// Defaults to LogLevelDebug.
	LevelPending LogLevel
	// LevelSuccess is used when the success action is emitted.
	// Defaults to LogLevelDebug.
	LevelSuccess LogLevel
	// LevelFailure is used when the call is rejected.
	// Defaults to LogLevelWarn.
	LevelFailure LogLevel
	// LevelFallback is used when a lifecycle action is not standard shaped
	// and the original action is forwarded instead.
	// Defaults to LogLevelWarn.
	LevelFallback LogLevel

	// Disabled disables all logging when set to true.
	Disabled bool
}

var defaultLogConfig = LogConfig{
	LevelPending:  LogLevelDebug,
	LevelSuccess:  LogLevelDebug,
	LevelFailure:  LogLevelWarn,
	LevelFallback: LogLevelWarn,
}

func parseLogLevel(level LogLevel) LogLevel {
	return LogLevel(strings.ToLower(string(level)))
}

func (c LogConfig) parse() LogConfig {
	c.LevelPending = parseLogLevel(c.LevelPending)
	if c.LevelPending == "" {
		c.LevelPending = defaultLogConfig.LevelPending
	}
	c.LevelSuccess = parseLogLevel(c.LevelSuccess)
	if c.LevelSuccess == "" {
		c.LevelSuccess = defaultLogConfig.LevelSuccess
	}
	c.LevelFailure = parseLogLevel(c.LevelFailure)
	if c.LevelFailure == "" {
		c.LevelFailure = defaultLogConfig.LevelFailure
	}
	c.LevelFallback = parseLogLevel(c.LevelFallback)
	if c.LevelFallback == "" {
		c.LevelFallback = defaultLogConfig.LevelFallback
	}
	return c
}

func logFunc(level LogLevel, log Logger) func(msg string, args ...any) {
	switch level {
	case LogLevelDebug:
		return log.Debug
	case LogLevelWarn:
		return log.Warn
	case LogLevelError:
		return log.Error
	default:
		return log.Info
	}
}

func appendArgs(args ...[]any) []any {
	l := 0
	for _, a := range args {
		l += len(a)
	}
	result := make([]any, 0, l)
	for _, a := range args {
		result = append(result, a...)
	}
	return result
}

// lifecycleLogger binds a Logger to a parsed LogConfig.
type lifecycleLogger struct {
	cfg      LogConfig
	pending  func(msg string, args ...any)
	success  func(msg string, args ...any)
	failure  func(msg string, args ...any)
	fallback func(msg string, args ...any)
	err      func(msg string, args ...any)
}

func newLifecycleLogger(log Logger, cfg LogConfig) *lifecycleLogger {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.parse()
	if cfg.Disabled {
		nop := func(string, ...any) {}
		return &lifecycleLogger{cfg: cfg, pending: nop, success: nop, failure: nop, fallback: nop, err: nop}
	}
	return &lifecycleLogger{
		cfg:      cfg,
		pending:  logFunc(cfg.LevelPending, log),
		success:  logFunc(cfg.LevelSuccess, log),
		failure:  logFunc(cfg.LevelFailure, log),
		fallback: logFunc(cfg.LevelFallback, log),
		err:      log.Error,
	}
}

func (l *lifecycleLogger) logPending(typ string) {
	l.pending("SLIMASYNC: Pending", appendArgs(l.cfg.Args, []any{"type", typ})...)
}

func (l *lifecycleLogger) logSuccess(typ string, d time.Duration) {
	l.success("SLIMASYNC: Success", appendArgs(l.cfg.Args, []any{"type", typ, "duration", d})...)
}

func (l *lifecycleLogger) logFailure(typ string, err error, d time.Duration) {
	l.failure("SLIMASYNC: Failure", appendArgs(l.cfg.Args, []any{"type", typ, "error", err, "duration", d})...)
}

func (l *lifecycleLogger) logFallback(typ string) {
	l.fallback("SLIMASYNC: Non-standard action, forwarding original", appendArgs(l.cfg.Args, []any{"type", typ})...)
}

func (l *lifecycleLogger) logDispatchError(typ string, err error) {
	l.err("SLIMASYNC: Dispatch failed", appendArgs(l.cfg.Args, []any{"type", typ, "error", err})...)
}
