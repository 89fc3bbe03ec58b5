package questionbank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank/metrics"
	"rmfaudit/pkg/platform/circuit"
	"rmfaudit/pkg/platform/sentinel"
)

const defaultTimeout = 5 * time.Second

// Guarded bounds every load with a timeout and stops calling a failing source
// once its breaker opens. Every failure it returns wraps sentinel.ErrUnavailable.
type Guarded struct {
	next     Bank
	timeout  time.Duration
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	listener func(ctx context.Context, opened bool)
}

type GuardedOption func(*Guarded)

func WithTimeout(d time.Duration) GuardedOption {
	return func(g *Guarded) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) GuardedOption {
	return func(g *Guarded) {
		if b != nil {
			g.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) GuardedOption {
	return func(g *Guarded) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) GuardedOption {
	return func(g *Guarded) {
		g.metrics = m
	}
}

// WithStateListener is called after the breaker opens or closes.
func WithStateListener(fn func(ctx context.Context, opened bool)) GuardedOption {
	return func(g *Guarded) {
		g.listener = fn
	}
}

func NewGuarded(next Bank, opts ...GuardedOption) *Guarded {
	g := &Guarded{
		next:    next,
		timeout: defaultTimeout,
		breaker: circuit.New("question_bank"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guarded) LoadQuestions(ctx context.Context, c category.Category) ([]Question, error) {
	if !g.breaker.Allow() {
		g.metrics.IncFailure("breaker_open")
		return nil, fmt.Errorf("%w: question bank circuit open", sentinel.ErrUnavailable)
	}

	loadCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	qs, err := g.next.LoadQuestions(loadCtx, c)
	if err != nil {
		g.metrics.ObserveLoad(start, "error")
		// The caller giving up says nothing about the source's health.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, ctx.Err())
		}
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		g.metrics.IncFailure(reason)
		_, change := g.breaker.RecordFailure()
		if change.Opened {
			g.stateChanged(ctx, true)
		}
		if g.logger != nil {
			g.logger.WarnContext(ctx, "question bank load failed",
				"category", c.String(),
				"reason", reason,
				"error", err,
			)
		}
		return nil, fmt.Errorf("%w: load %s: %w", sentinel.ErrUnavailable, c, err)
	}

	g.metrics.ObserveLoad(start, "ok")
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.stateChanged(ctx, false)
	}
	return qs, nil
}

func (g *Guarded) stateChanged(ctx context.Context, opened bool) {
	g.metrics.SetBreakerOpen(opened)
	if g.logger != nil {
		if opened {
			g.logger.WarnContext(ctx, "question bank circuit opened", "breaker", g.breaker.Name())
		} else {
			g.logger.InfoContext(ctx, "question bank circuit closed", "breaker", g.breaker.Name())
		}
	}
	if g.listener != nil {
		g.listener(ctx, opened)
	}
}
