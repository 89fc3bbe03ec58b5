// Package middleware applies per-caller sliding window limits to HTTP routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rmfaudit/internal/ratelimit/metrics"
	"rmfaudit/internal/ratelimit/models"
	"rmfaudit/pkg/attrs"
	id "rmfaudit/pkg/domain"
	"rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/platform/circuit"
	"rmfaudit/pkg/platform/httputil"
	"rmfaudit/pkg/requestcontext"
)

// Store is a sliding window counter.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Middleware limits identified callers by user ID and anonymous callers by
// client IP. When a fallback store is configured, primary store failures
// trip a breaker and checks run on the fallback until the primary recovers;
// responses served that way carry X-RateLimit-Status: degraded. Without a
// fallback, store failures let the request through.
type Middleware struct {
	primary   Store
	fallback  Store
	breaker   *circuit.Breaker
	limit     int
	window    time.Duration
	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *metrics.Metrics
	disabled  bool
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback sets the store used while the primary store is failing.
func WithFallback(store Store) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		if b != nil {
			m.breaker = b
		}
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(m *Middleware) {
		m.publisher = p
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(primary Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Middleware{
		primary: primary,
		limit:   limit,
		window:  window,
		logger:  logger,
		breaker: circuit.New("ratelimit_store", circuit.WithSuccessThreshold(3)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit is the HTTP middleware.
func (m *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		kind, key := callerKey(ctx)

		result, degraded, err := m.check(ctx, key)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
				"request_id", requestcontext.RequestID(ctx),
				"key", key,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}
		m.metrics.IncDecision(kind, result.Allowed)

		if !result.Allowed {
			m.logAudit(ctx, audit.EventRateLimitExceeded,
				"user_id", string(requestcontext.UserID(ctx)),
				"key", key,
				"reason", kind+"_limit",
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteError(w, models.ErrRateLimited.Withf(
				"rate limit of %d requests per %s exceeded, retry in %ds", result.Limit, m.window, result.RetryAfter))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) check(ctx context.Context, key string) (*models.Result, bool, error) {
	if m.fallback != nil && m.breaker.IsOpen() && !m.breaker.Allow() {
		res, err := m.fallback.Allow(ctx, key, m.limit, m.window)
		return res, true, err
	}

	res, err := m.primary.Allow(ctx, key, m.limit, m.window)
	if err == nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.metrics.SetFallback(false)
			m.logger.InfoContext(ctx, "rate limit store recovered, leaving fallback")
		}
		return res, false, nil
	}

	m.metrics.IncStoreError()
	if m.fallback == nil {
		return nil, false, err
	}
	if _, change := m.breaker.RecordFailure(); change.Opened {
		m.metrics.SetFallback(true)
		m.logger.WarnContext(ctx, "rate limit store failing, switching to in-memory fallback", "error", err)
	}
	res, fbErr := m.fallback.Allow(ctx, key, m.limit, m.window)
	return res, true, fbErr
}

func callerKey(ctx context.Context) (kind, key string) {
	if userID := requestcontext.UserID(ctx); userID != "" {
		return "user", models.UserKey(string(userID))
	}
	return "ip", models.IPKey(requestcontext.ClientIP(ctx))
}

func (m *Middleware) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	m.logger.WarnContext(ctx, string(event), args...)
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    id.UserID(attrs.ExtractString(attributes, "user_id")),
		Action:    string(event),
		Decision:  "denied",
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
	}); err != nil {
		m.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
