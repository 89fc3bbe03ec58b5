package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmfaudit/internal/ratelimit/metrics"
	"rmfaudit/internal/ratelimit/models"
	"rmfaudit/internal/ratelimit/store/bucket"
	id "rmfaudit/pkg/domain"
	"rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/platform/audit/publisher"
	auditmemory "rmfaudit/pkg/platform/audit/store/memory"
	"rmfaudit/pkg/platform/circuit"
	"rmfaudit/pkg/requestcontext"
)

type failingStore struct {
	calls int
}

func (f *failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	f.calls++
	return nil, errors.New("redis: connection refused")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func request(userID, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/audits/runs/current", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test")
	if userID != "" {
		ctx = requestcontext.WithUserID(ctx, id.UserID(userID))
	}
	return req.WithContext(ctx)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLimit_DeniesOverLimit(t *testing.T) {
	events := auditmemory.NewInMemoryStore()
	mt := metrics.New(prometheus.NewRegistry())
	mw := New(bucket.NewInMemoryBucketStore(), 2, time.Minute, nil,
		WithAuditPublisher(publisher.NewPublisher(events)),
		WithMetrics(mt),
	)
	h := mw.Limit(okHandler)

	for i := range 2 {
		rr := serve(h, request("alice", "10.0.0.1"))
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, []string{"1", "0"}[i], rr.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
	}

	rr := serve(h, request("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), `"reason":"rate_limit_exceeded"`)

	recorded, err := events.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, string(audit.EventRateLimitExceeded), recorded[0].Action)
	assert.Equal(t, audit.CategorySecurity, recorded[0].Category)
	assert.Equal(t, "user_limit", recorded[0].Reason)

	assert.Equal(t, 2.0, testutil.ToFloat64(mt.Decisions.WithLabelValues("user", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Decisions.WithLabelValues("user", "denied")))
}

func TestLimit_KeysByUserThenIP(t *testing.T) {
	h := New(bucket.NewInMemoryBucketStore(), 1, time.Minute, nil).Limit(okHandler)

	assert.Equal(t, http.StatusNoContent, serve(h, request("alice", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, request("bob", "10.0.0.1")).Code, "users sharing an IP have separate buckets")
	assert.Equal(t, http.StatusNoContent, serve(h, request("", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, request("", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, request("", "10.0.0.2")).Code)
}

func TestLimit_FailsOpenWithoutFallback(t *testing.T) {
	store := &failingStore{}
	h := New(store, 1, time.Minute, nil).Limit(okHandler)

	for range 3 {
		rr := serve(h, request("alice", "10.0.0.1"))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, 3, store.calls)
}

func TestLimit_FallsBackWhenPrimaryFails(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	primary := &failingStore{}
	mt := metrics.New(prometheus.NewRegistry())
	breaker := circuit.New("ratelimit_store",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	h := New(primary, 2, time.Minute, nil,
		WithFallback(bucket.NewInMemoryBucketStore()),
		WithBreaker(breaker),
		WithMetrics(mt),
	).Limit(okHandler)

	rr := serve(h, request("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "degraded", rr.Header().Get("X-RateLimit-Status"))
	assert.False(t, breaker.IsOpen())

	rr = serve(h, request("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.FallbackInUse))

	// Open breaker skips the primary until the cooldown elapses.
	rr = serve(h, request("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "degraded", rr.Header().Get("X-RateLimit-Status"))
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(mt.StoreErrors))
}

func TestLimit_Disabled(t *testing.T) {
	store := &failingStore{}
	h := New(store, 1, time.Minute, nil, WithDisabled(true)).Limit(okHandler)

	for range 3 {
		assert.Equal(t, http.StatusNoContent, serve(h, request("alice", "10.0.0.1")).Code)
	}
	assert.Zero(t, store.calls)
}
