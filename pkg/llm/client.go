// Package llm provides the bounded-concurrency, retrying client the rest of
// the pipeline uses to call the LLM sidecar (C9). The sidecar speaks the
// gRPC contract defined in proto/llm.proto; this package never talks HTTP
// to a vendor API directly.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	pb "github.com/constraintwatch/constraintwatch/proto"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds LLM client configuration, sourced from the LLM YAML file
// (base_url, model, temperature, max_tokens, retries, retry_backoff_seconds,
// timeout_seconds) plus the process-wide concurrency gate width.
type Config struct {
	Address             string
	Model               string
	Temperature         float64
	MaxTokens           int
	Retries             int
	RetryBackoffSeconds int
	TimeoutSeconds      int
	Concurrency         int64
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		Temperature:         0.1,
		MaxTokens:           4096,
		Retries:             3,
		RetryBackoffSeconds: 2,
		TimeoutSeconds:      60,
		Concurrency:         5,
	}
}

// Health reports live concurrency-gate statistics via lock-free counters.
type Health struct {
	InFlight     int64
	TotalCalls   int64
	TotalErrors  int64
	TotalRetries int64
}

// Client is the process-wide LLM entry point. A single Client is
// constructed at startup and shared by every component that calls the LLM
// (translation, extraction, thesis generation).
type Client struct {
	cfg  Config
	conn *grpc.ClientConn
	rpc  pb.LLMServiceClient
	gate *semaphore.Weighted

	inFlight     atomic.Int64
	totalCalls   atomic.Int64
	totalErrors  atomic.Int64
	totalRetries atomic.Int64
}

// permanentStatusError wraps a 4xx response so backoff.Retry stops
// immediately instead of retrying a request the sidecar cannot ever accept.
type permanentStatusError struct {
	err error
}

func (e *permanentStatusError) Error() string { return e.err.Error() }
func (e *permanentStatusError) Unwrap() error { return e.err }

// NewClient dials the LLM sidecar and constructs a Client. Concurrency
// defaults to 5 when unset.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dialing llm sidecar at %s: %w", cfg.Address, err)
	}

	return &Client{
		cfg:  cfg,
		conn: conn,
		rpc:  pb.NewLLMServiceClient(conn),
		gate: semaphore.NewWeighted(cfg.Concurrency),
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Health returns a snapshot of the client's lock-free call counters.
func (c *Client) Health() Health {
	return Health{
		InFlight:     c.inFlight.Load(),
		TotalCalls:   c.totalCalls.Load(),
		TotalErrors:  c.totalErrors.Load(),
		TotalRetries: c.totalRetries.Load(),
	}
}

// Option customizes a single Extract call.
type Option func(*pb.ExtractRequest)

// WithTemperature overrides the configured default temperature.
func WithTemperature(t float64) Option {
	return func(r *pb.ExtractRequest) { r.Temperature = t }
}

// WithMaxTokens overrides the configured default max tokens.
func WithMaxTokens(n int) Option {
	return func(r *pb.ExtractRequest) { r.MaxTokens = int32(n) }
}

// WithJSONMode requires the sidecar to return a JSON-mode completion.
func WithJSONMode() Option {
	return func(r *pb.ExtractRequest) { r.JsonMode = true }
}

// Extract is the single LLM entry point: llm_extract(prompt, system,
// temperature?, max_tokens?, json_mode?). It acquires a concurrency-gate
// slot, then retries transport errors and 5xx sidecar responses with
// doubling exponential backoff up to cfg.Retries times. 4xx responses fail
// immediately. On exhaustion it returns a fatal error for the caller.
func (c *Client) Extract(ctx context.Context, prompt, system string, opts ...Option) (string, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquiring llm concurrency slot: %w", err)
	}
	defer c.gate.Release(1)

	c.inFlight.Inc()
	defer c.inFlight.Dec()
	c.totalCalls.Inc()

	req := &pb.ExtractRequest{
		SystemPrompt:   system,
		UserPrompt:     prompt,
		Temperature:    c.cfg.Temperature,
		MaxTokens:      int32(c.cfg.MaxTokens),
		TimeoutSeconds: int32(c.cfg.TimeoutSeconds),
	}
	for _, opt := range opts {
		opt(req)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Duration(c.cfg.RetryBackoffSeconds) * time.Second
	policy.Multiplier = 2
	retrier := backoff.WithMaxRetries(policy, uint64(c.cfg.Retries))

	var result string
	attempt := func() error {
		callCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
		defer cancel()

		resp, err := c.rpc.Extract(callCtx, req)
		if err != nil {
			c.totalErrors.Inc()
			return err // transport error: retryable
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			c.totalErrors.Inc()
			return &permanentStatusError{err: fmt.Errorf("llm sidecar returned %d: %s", resp.StatusCode, resp.Error)}
		}
		if resp.StatusCode >= 500 {
			c.totalErrors.Inc()
			return fmt.Errorf("llm sidecar returned %d: %s", resp.StatusCode, resp.Error)
		}
		result = resp.Text
		return nil
	}

	err := backoff.Retry(func() error {
		err := attempt()
		if err == nil {
			return nil
		}
		var perm *permanentStatusError
		if ok := asPermanent(err, &perm); ok {
			return backoff.Permanent(err)
		}
		c.totalRetries.Inc()
		slog.Warn("llm call failed, retrying", "error", err)
		return err
	}, retrier)

	if err != nil {
		return "", fmt.Errorf("llm extract exhausted retries: %w", err)
	}
	return result, nil
}

func asPermanent(err error, target **permanentStatusError) bool {
	pe, ok := err.(*permanentStatusError)
	if ok {
		*target = pe
	}
	return ok
}
