package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"platingreport/internal/metrics"
)

const (
	DefaultModel             = "gemini-2.0-flash"
	DefaultMaxRetries        = 4
	DefaultInitialBackoff    = time.Second
	DefaultBackoffMultiplier = 2.0
)

// Generator sends a single prompt to a text-generation endpoint.
type Generator interface {
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// Options controls one Summarize call. MaxRetries counts every attempt,
// the first one included.
type Options struct {
	Model             string
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
}

func DefaultOptions() Options {
	return Options{
		Model:             DefaultModel,
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

func (o Options) Validate() error {
	var errs []error

	if o.Model == "" {
		errs = append(errs, errors.New("model is empty"))
	}
	if o.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max retries must be at least 1 (got %d)", o.MaxRetries))
	}
	if o.InitialBackoff < 0 {
		errs = append(errs, fmt.Errorf("initial backoff is negative (got %s)", o.InitialBackoff))
	}
	if !(o.BackoffMultiplier > 0) {
		errs = append(errs, fmt.Errorf("backoff multiplier must be positive (got %g)", o.BackoffMultiplier))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Sleeper blocks for d. Tests swap it to record backoff durations.
type Sleeper func(d time.Duration)

// Summarizer wraps a Generator with overload-aware retries. It holds no
// per-call state, so one instance may serve concurrent callers.
type Summarizer struct {
	gen   Generator
	opts  Options
	sleep Sleeper
	cache *resultCache
	log   *slog.Logger
}

type Option func(*Summarizer)

func WithSleeper(sleep Sleeper) Option {
	return func(s *Summarizer) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithCache keeps up to maxEntries successful replies for ttl.
func WithCache(maxEntries int, ttl time.Duration) Option {
	return func(s *Summarizer) {
		s.cache = newResultCache(maxEntries, ttl)
	}
}

func New(gen Generator, opts Options, log *slog.Logger, options ...Option) (*Summarizer, error) {
	if gen == nil {
		return nil, errors.New("generator is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Summarizer{
		gen:   gen,
		opts:  opts,
		sleep: time.Sleep,
		log:   log,
	}
	for _, o := range options {
		o(s)
	}

	return s, nil
}

func (s *Summarizer) Options() Options {
	return s.opts
}

// Summarize runs the prompt with the options given to New.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	return s.SummarizeWith(ctx, prompt, s.opts)
}

// SummarizeWith returns the generated text verbatim, an *ExhaustedError when
// every attempt reported overload, or a *CallError for any other failure.
func (s *Summarizer) SummarizeWith(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	if text, ok := s.cache.get(opts.Model, prompt, now); ok {
		s.log.DebugContext(ctx, "Summary is served from cache",
			"model", opts.Model,
			"promptBytes", len(prompt))

		return text, nil
	}

	backoff := opts.InitialBackoff

	for attempt := 1; ; attempt++ {
		text, err := s.gen.Generate(ctx, opts.Model, prompt)
		if err == nil {
			metrics.ObserveAttempt(metrics.AttemptSuccess)
			s.cache.set(opts.Model, prompt, text, time.Now())

			return text, nil
		}

		if !IsOverloaded(err) {
			metrics.ObserveAttempt(metrics.AttemptFailed)
			s.log.ErrorContext(ctx, "Summary request failed",
				"error", err,
				"model", opts.Model,
				"attempt", attempt)

			return "", &CallError{Attempt: attempt, Err: err}
		}

		metrics.ObserveAttempt(metrics.AttemptOverloaded)

		if attempt >= opts.MaxRetries {
			s.log.ErrorContext(ctx, "Summary retries are exhausted",
				"error", err,
				"model", opts.Model,
				"attempts", attempt)

			return "", &ExhaustedError{Attempts: attempt, Err: err}
		}

		s.log.WarnContext(ctx, "Model is overloaded, backing off",
			"model", opts.Model,
			"attempt", attempt,
			"maxRetries", opts.MaxRetries,
			"backoff", backoff)

		metrics.ObserveBackoff(backoff)
		s.sleep(backoff)
		backoff = time.Duration(float64(backoff) * opts.BackoffMultiplier)
	}
}
