package middleware

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

// StoreMiddleware wraps a ResultStore with additional behavior.
type StoreMiddleware func(ports.ResultStore) ports.ResultStore

// ChainStore applies middlewares to store. The first middleware is the
// outermost one, so it sees every call first.
func ChainStore(store ports.ResultStore, mws ...StoreMiddleware) ports.ResultStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// retryStore retries writes that failed on lock contention, with exponential
// backoff and jitter. Reads and non-transient failures pass through.
type retryStore struct {
	ports.ResultStore
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware retries Create and UpdateOutcome up to maxRetries times
// when the error wraps ports.ErrStoreUnavailable.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) StoreMiddleware {
	return func(next ports.ResultStore) ports.ResultStore {
		return &retryStore{
			ResultStore: next,
			maxRetries:  maxRetries,
			baseDelay:   baseDelay,
			maxDelay:    maxDelay,
		}
	}
}

func (r *retryStore) Create(ctx context.Context, res domain.Result) (domain.Result, error) {
	var out domain.Result
	err := r.do(ctx, func() error {
		var err error
		out, err = r.ResultStore.Create(ctx, res)
		return err
	})
	return out, err
}

func (r *retryStore) UpdateOutcome(ctx context.Context, id string, o domain.Outcome) error {
	return r.do(ctx, func() error { return r.ResultStore.UpdateOutcome(ctx, id, o) })
}

func (r *retryStore) do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.Is(err, ports.ErrStoreUnavailable) || ctx.Err() != nil {
			return err
		}
		if attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.calculateDelay(attempt)):
		}
	}
	return fmt.Errorf("write failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

func (r *retryStore) calculateDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	delay := r.baseDelay * time.Duration(1<<uint(attempt))

	// ±25% jitter.
	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - delay/4

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}

// rateLimitedStore paces writes with a token bucket.
type rateLimitedStore struct {
	ports.ResultStore
	limiter *rate.Limiter
}

// RateLimitMiddleware limits Create and UpdateOutcome to limit writes per
// second with the given burst. Bulk rescoring uses it to leave room for
// concurrent submitters on the same database.
func RateLimitMiddleware(limit rate.Limit, burst int) StoreMiddleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next ports.ResultStore) ports.ResultStore {
		return &rateLimitedStore{ResultStore: next, limiter: limiter}
	}
}

func (r *rateLimitedStore) Create(ctx context.Context, res domain.Result) (domain.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Result{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.ResultStore.Create(ctx, res)
}

func (r *rateLimitedStore) UpdateOutcome(ctx context.Context, id string, o domain.Outcome) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return r.ResultStore.UpdateOutcome(ctx, id, o)
}

// tracedStore records a span per store call.
type tracedStore struct {
	next   ports.ResultStore
	tracer trace.Tracer
}

// TracingMiddleware adds an OpenTelemetry span to every ResultStore call.
func TracingMiddleware(tracer trace.Tracer) StoreMiddleware {
	return func(next ports.ResultStore) ports.ResultStore {
		return &tracedStore{next: next, tracer: tracer}
	}
}

func (t *tracedStore) Create(ctx context.Context, res domain.Result) (domain.Result, error) {
	ctx, span := t.tracer.Start(ctx, "ResultStore.Create",
		trace.WithAttributes(attribute.String("persona.theme_id", res.ThemeID)))
	defer span.End()

	out, err := t.next.Create(ctx, res)
	finishSpan(span, err)
	if err == nil {
		span.SetAttributes(attribute.String("persona.result_id", out.ID))
	}
	return out, err
}

func (t *tracedStore) Get(ctx context.Context, id string) (domain.Result, error) {
	ctx, span := t.tracer.Start(ctx, "ResultStore.Get",
		trace.WithAttributes(attribute.String("persona.result_id", id)))
	defer span.End()

	out, err := t.next.Get(ctx, id)
	finishSpan(span, err)
	return out, err
}

func (t *tracedStore) Scan(ctx context.Context, filter ports.ResultFilter) (ports.ResultCursor, error) {
	ctx, span := t.tracer.Start(ctx, "ResultStore.Scan",
		trace.WithAttributes(attribute.String("persona.theme_id", filter.ThemeID)))
	defer span.End()

	cur, err := t.next.Scan(ctx, filter)
	finishSpan(span, err)
	return cur, err
}

func (t *tracedStore) UpdateOutcome(ctx context.Context, id string, o domain.Outcome) error {
	ctx, span := t.tracer.Start(ctx, "ResultStore.UpdateOutcome",
		trace.WithAttributes(
			attribute.String("persona.result_id", id),
			attribute.String("persona.type", o.PersonalityType),
		))
	defer span.End()

	err := t.next.UpdateOutcome(ctx, id, o)
	finishSpan(span, err)
	return err
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
