// Package generator issues batch requests to the generative service and
// owns the retry, backoff and model-fallback policy around them.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
	"github.com/jonesrussell/north-cloud/content-forge/internal/logger"
)

var (
	// ErrAttemptsExhausted is returned when every retry attempt failed.
	ErrAttemptsExhausted = errors.New("generation attempts exhausted")
	// ErrEmptyResponse is returned when the service answered with no text.
	ErrEmptyResponse = errors.New("empty generation response")
)

// Backend issues a single model invocation. The production backend is
// the Gemini adapter; tests substitute a fake.
type Backend interface {
	Invoke(ctx context.Context, model string, kind content.Kind, prompt string) (string, error)
}

// Config configures the retry and fallback policy.
type Config struct {
	// PrimaryModel handles the first half of the attempt budget.
	PrimaryModel string
	// FallbackModel takes over at the midpoint attempt, at most once
	// per call.
	FallbackModel string
	// MaxAttempts is the total attempt budget per Generate call.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 6
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 2 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 60 * time.Second
	}
}

// transientStatuses are the HTTP statuses retried regardless of attempt
// count. Any 5xx is also transient.
var transientStatuses = map[int]struct{}{
	408: {}, // request timeout
	409: {}, // conflict
	425: {}, // too early
	429: {}, // rate limited
}

// Client drives the generative service with retries and model fallback.
// It holds no local state between calls.
type Client struct {
	backend Backend
	cfg     Config
	log     logger.Logger
}

// New creates a generation client over the given backend.
func New(backend Backend, cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{backend: backend, cfg: cfg, log: log}
}

// Generate requests count items of the given kind and returns the raw
// response text. Transient failures are retried with exponential backoff
// and jitter; at the midpoint attempt the client switches to the
// fallback model. A terminal failure or an exhausted attempt budget
// returns an error the caller treats as "no items this round".
func (c *Client) Generate(ctx context.Context, kind content.Kind, prompt string, count int) (string, error) {
	model := c.cfg.PrimaryModel

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > c.cfg.MaxAttempts/2 && model == c.cfg.PrimaryModel && c.cfg.FallbackModel != "" {
			c.log.Warn("switching to fallback model",
				logger.String("model", c.cfg.FallbackModel),
				logger.Int("attempt", attempt),
			)
			model = c.cfg.FallbackModel
		}

		text, err := c.backend.Invoke(ctx, model, kind, prompt)
		if err == nil {
			c.log.Debug("generation succeeded",
				logger.String("model", model),
				logger.String("kind", string(kind)),
				logger.Int("requested", count),
				logger.Int("attempt", attempt),
			)
			return text, nil
		}
		lastErr = err

		if !c.retriable(err, attempt) {
			return "", fmt.Errorf("terminal generation failure on attempt %d: %w", attempt, err)
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		delay := c.backoff(attempt)
		c.log.Warn("transient generation failure, backing off",
			logger.String("model", model),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, c.cfg.MaxAttempts, lastErr)
}

// retriable classifies an error. Errors carrying a known transient
// status or any 5xx are retriable; statusless errors are retriable only
// within the first half of the attempt budget.
func (c *Client) retriable(err error, attempt int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if _, ok := transientStatuses[gerr.Code]; ok {
			return true
		}
		return gerr.Code >= 500 && gerr.Code < 600
	}

	return attempt <= c.cfg.MaxAttempts/2
}

// backoff computes base*2^(attempt-1) plus uniform jitter, capped.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.BaseDelay << (attempt - 1)
	if delay > c.cfg.MaxDelay || delay <= 0 {
		delay = c.cfg.MaxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(c.cfg.BaseDelay)))
}
