// Command slimasync runs one asynchronous request through a store with the
// slimasync middleware and prints the lifecycle and final state.
//
// With -url the request is an HTTP GET whose JSON object response becomes
// the success payload. Without it the request is simulated: it waits for
// -delay and then either succeeds with {"prefix": ..., "completedAt": ...}
// or fails when -fail is set.
//
// Run:
//
//	go run ./cmd/slimasync -prefix LOAD_USER
//	go run ./cmd/slimasync -url https://httpbin.org/json
//	go run ./cmd/slimasync -config slimasync.yaml -stage orders -fail
//	go run ./cmd/slimasync -redis localhost:6379 -sink http://localhost:8080/events
//
// With -redis every standard action is appended to a Redis stream, with
// -sink it is sent as a CloudEvent over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	ce "github.com/cloudevents/sdk-go/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fxsml/slimasync"
	"github.com/fxsml/slimasync/cloudevents"
	"github.com/fxsml/slimasync/config"
	"github.com/fxsml/slimasync/fsa"
	"github.com/fxsml/slimasync/journal"
	"github.com/fxsml/slimasync/store"
)

type options struct {
	configPath string
	stage      string
	prefix     string
	url        string
	delay      time.Duration
	fail       bool
	redisAddr  string
	stream     string
	sinkURL    string
	source     string
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file")
	flag.StringVar(&opts.stage, "stage", "", "environment stage for SLIMASYNC_{STAGE}_* variables")
	flag.StringVar(&opts.prefix, "prefix", "REQUEST_DATA", "action type prefix")
	flag.StringVar(&opts.url, "url", "", "endpoint fetched by the request")
	flag.DurationVar(&opts.delay, "delay", 100*time.Millisecond, "simulated request latency")
	flag.BoolVar(&opts.fail, "fail", false, "make the simulated request fail")
	flag.StringVar(&opts.redisAddr, "redis", "", "Redis address for the action journal")
	flag.StringVar(&opts.stream, "stream", journal.DefaultStream, "Redis stream key")
	flag.StringVar(&opts.sinkURL, "sink", "", "CloudEvents HTTP target")
	flag.StringVar(&opts.source, "source", cloudevents.DefaultSource, "CloudEvents source attribute")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("slimasync failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	cfg, err := config.Load(opts.configPath, opts.stage)
	if err != nil {
		return err
	}

	async := slimasync.NewWithConfig(cfg, slimasync.WithLogger(logger))
	middleware := []slimasync.Middleware{async.Middleware()}

	if opts.redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", opts.redisAddr, err)
		}
		j := journal.New(client, journal.Config{Stream: opts.stream, Logger: logger})
		middleware = append(middleware, j.Middleware())
	}

	if opts.sinkURL != "" {
		sender, err := ce.NewHTTP(ce.WithTarget(opts.sinkURL))
		if err != nil {
			return fmt.Errorf("cloudevents sender: %w", err)
		}
		middleware = append(middleware, cloudevents.Forward(sender, cloudevents.ForwardConfig{
			Source: opts.source,
			Logger: logger,
		}))
	}

	var lifecycle []string
	s := store.New(func(state, action any) any {
		a, ok := fsa.From(action)
		if !ok {
			return state
		}
		lifecycle = append(lifecycle, a.Type)
		if a.Error {
			return map[string]any{"type": a.Type, "error": fmt.Sprint(a.Payload)}
		}
		return map[string]any{"type": a.Type, "payload": a.Payload}
	}, map[string]any{}, middleware...)

	result, err := s.Dispatch(ctx, &slimasync.APIAction{
		TypePrefix: opts.prefix,
		CallAPI:    request(opts),
		Meta:       map[string]any{"stage": opts.stage},
	})
	if err != nil {
		return err
	}

	call, ok := result.(*slimasync.Call)
	if !ok {
		return fmt.Errorf("action was not handled asynchronously")
	}
	if _, err := call.Wait(ctx); err != nil {
		logger.Warn("request failed", "error", err)
	}
	if err := async.Drain(ctx); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"lifecycle": lifecycle,
		"state":     s.GetState(),
	})
}

func request(opts options) slimasync.CallFunc {
	if opts.url != "" {
		return func(ctx context.Context) (any, error) {
			return fetch(ctx, opts.url)
		}
	}
	return func(ctx context.Context) (any, error) {
		select {
		case <-time.After(opts.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if opts.fail {
			return nil, errors.New("simulated failure")
		}
		return map[string]any{
			"prefix":      opts.prefix,
			"completedAt": time.Now().UTC().Format(time.RFC3339Nano),
		}, nil
	}
}

func fetch(ctx context.Context, url string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return body, nil
}
