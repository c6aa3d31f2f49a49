// Package dispatch implements the two-stage provider failover.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Cyclone1070/termai/internal/config"
	"github.com/Cyclone1070/termai/internal/provider/model"
)

// Indicator is a started progress display. Stop must clear the terminal
// line before returning and must be safe to call more than once.
type Indicator interface {
	Stop()
}

// IndicatorFunc starts a progress display for one blocking wait.
type IndicatorFunc func() Indicator

type noopIndicator struct{}

func (noopIndicator) Stop() {}

// Dispatcher races a prompt against the primary provider's soft timeout
// and falls back to the secondary provider with retries and exponential
// backoff. A Dispatcher serves one invocation; it is not reused.
type Dispatcher struct {
	primary  model.Generator // may be nil when unconfigured
	fallback model.Generator // may be nil when unconfigured

	primaryTimeout time.Duration
	attempts       int
	backoff        time.Duration

	indicator IndicatorFunc
	sleep     func(time.Duration)
	logger    *zap.Logger

	record []model.Attempt
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithIndicator attaches a progress display shown during every network wait.
func WithIndicator(f IndicatorFunc) Option {
	return func(d *Dispatcher) { d.indicator = f }
}

// WithSleep overrides the backoff sleep (for testing).
func WithSleep(f func(time.Duration)) Option {
	return func(d *Dispatcher) { d.sleep = f }
}

// WithPrimaryTimeout overrides the soft timeout (for testing).
func WithPrimaryTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.primaryTimeout = timeout }
}

// New creates a Dispatcher. Either generator may be nil; Dispatch fails
// immediately with model.ErrNoProviders when both are.
func New(primary, fallback model.Generator, cfg *config.Config, logger *zap.Logger, opts ...Option) *Dispatcher {
	if cfg == nil {
		panic("cfg is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		primary:        primary,
		fallback:       fallback,
		primaryTimeout: time.Duration(cfg.Providers.PrimaryTimeoutSeconds) * time.Second,
		attempts:       cfg.Providers.FallbackAttempts,
		backoff:        time.Duration(cfg.Providers.FallbackBackoffMs) * time.Millisecond,
		indicator:      func() Indicator { return noopIndicator{} },
		sleep:          time.Sleep,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attempts returns the per-attempt record of the last Dispatch call.
func (d *Dispatcher) Attempts() []model.Attempt {
	return d.record
}

// Dispatch sends the prompt through the failover chain and returns the
// final answer. All provider failures are absorbed here; the returned
// error is a single readable message, never a raw transport error.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (model.Answer, error) {
	d.record = nil

	if d.primary == nil && d.fallback == nil {
		return model.Answer{}, model.ErrNoProviders
	}

	fallbackReason := "primary not configured"
	if d.primary != nil {
		answer, reason := d.tryPrimary(ctx, prompt)
		if reason == "" {
			return answer, nil
		}
		fallbackReason = reason
	}

	if d.fallback == nil {
		return model.Answer{}, fmt.Errorf("primary provider failed (%s) and no fallback is configured", fallbackReason)
	}

	return d.tryFallback(ctx, prompt, fallbackReason)
}

// tryPrimary submits the prompt on a goroutine and waits at most the soft
// timeout. On timeout the in-flight call is abandoned, not cancelled: a
// courtesy cancel is issued but its completion is never awaited.
func (d *Dispatcher) tryPrimary(ctx context.Context, prompt string) (model.Answer, string) {
	indicator := d.indicator()
	defer indicator.Stop()

	callCtx, cancel := context.WithCancel(ctx)

	type generation struct {
		text string
		err  error
	}
	// Buffered so an abandoned call can still complete and exit.
	resultCh := make(chan generation, 1)

	start := time.Now()
	go func() {
		out, err := d.primary.Generate(callCtx, prompt)
		resultCh <- generation{text: out, err: err}
	}()

	select {
	case res := <-resultCh:
		cancel()
		elapsed := time.Since(start)
		if res.err == nil {
			d.record = append(d.record, model.Attempt{Provider: d.primary.ID(), Elapsed: elapsed})
			d.logger.Debug("primary answered",
				zap.String("provider", string(d.primary.ID())),
				zap.Duration("elapsed", elapsed),
			)
			return model.Answer{
				Text:     res.text,
				Provider: d.primary.ID(),
				Elapsed:  elapsed,
			}, ""
		}
		kind := model.ClassifyFailure(res.err)
		d.record = append(d.record, model.Attempt{Provider: d.primary.ID(), Kind: kind, Err: res.err, Elapsed: elapsed})
		d.logger.Debug("primary failed",
			zap.String("provider", string(d.primary.ID())),
			zap.String("kind", string(kind)),
			zap.Error(res.err),
		)
		return model.Answer{}, fmt.Sprintf("error: %v", res.err)

	case <-time.After(d.primaryTimeout):
		cancel()
		d.record = append(d.record, model.Attempt{
			Provider: d.primary.ID(),
			Kind:     model.FailureTimeout,
			Err:      model.ErrTimeout,
			Elapsed:  d.primaryTimeout,
		})
		d.logger.Debug("primary timed out",
			zap.String("provider", string(d.primary.ID())),
			zap.Duration("timeout", d.primaryTimeout),
		)
		return model.Answer{}, "timeout"
	}
}

// tryFallback calls the secondary provider up to the configured attempt
// count, sleeping the doubling backoff after each failure. Individual
// calls have no internal deadline; only the attempt count bounds waiting.
func (d *Dispatcher) tryFallback(ctx context.Context, prompt string, reason string) (model.Answer, error) {
	indicator := d.indicator()
	defer indicator.Stop()

	delay := d.backoff
	var lastErr error

	start := time.Now()
	for attempt := 1; attempt <= d.attempts; attempt++ {
		attemptStart := time.Now()
		text, err := d.fallback.Generate(ctx, prompt)
		elapsed := time.Since(attemptStart)

		if err == nil {
			d.record = append(d.record, model.Attempt{Provider: d.fallback.ID(), Elapsed: elapsed})
			d.logger.Debug("fallback answered",
				zap.String("provider", string(d.fallback.ID())),
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", elapsed),
			)
			return model.Answer{
				Text:           text,
				Provider:       d.fallback.ID(),
				Elapsed:        time.Since(start),
				FallbackReason: reason,
			}, nil
		}

		lastErr = err
		kind := model.ClassifyFailure(err)
		d.record = append(d.record, model.Attempt{Provider: d.fallback.ID(), Kind: kind, Err: err, Elapsed: elapsed})
		d.logger.Debug("fallback attempt failed",
			zap.String("provider", string(d.fallback.ID())),
			zap.Int("attempt", attempt),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)

		d.sleep(delay)
		delay *= 2
	}

	return model.Answer{}, fmt.Errorf("all providers failed (fallback after %s): %w", reason, lastErr)
}
