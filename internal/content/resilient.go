package content

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ResilientConfig tunes the generator wrapper.
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// TripAfter opens the breaker after this many consecutive failed fetches.
	TripAfter   int
	OpenTimeout time.Duration
}

// DefaultResilientConfig returns the interactive defaults: a couple of quick
// retries, and a breaker that stops calling a dead endpoint for a minute.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
		TripAfter:    2,
		OpenTimeout:  60 * time.Second,
	}
}

// ResilientGenerator adds retry and circuit breaking around a Generator.
type ResilientGenerator struct {
	inner   Generator
	breaker circuitbreaker.CircuitBreaker[string]
	retrier retry.Retry[string]
	logger  *zap.Logger
}

// NewResilientGenerator wraps inner.
func NewResilientGenerator(inner Generator, cfg ResilientConfig, logger *zap.Logger) *ResilientGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = 1
	}
	rg := &ResilientGenerator{inner: inner, logger: logger}
	rg.breaker = circuitbreaker.New[string](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.TripAfter
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("content circuit breaker state change",
				zap.String("generator", inner.Name()),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	rg.retrier = retry.New[string](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})
	return rg
}

// GenerateJSON calls the wrapped generator through the breaker and retrier.
func (r *ResilientGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	return r.breaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return r.retrier.Do(ctx, func(ctx context.Context) (string, error) {
			out, err := r.inner.GenerateJSON(ctx, prompt, schema)
			if err != nil {
				r.logger.Debug("content generation attempt failed", zap.String("generator", r.inner.Name()), zap.Error(err))
			}
			return out, err
		})
	})
}

// Name returns the wrapped generator's name.
func (r *ResilientGenerator) Name() string {
	return r.inner.Name()
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
