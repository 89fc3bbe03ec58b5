package questionbank_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
	"rmfaudit/internal/questionbank/metrics"
	"rmfaudit/internal/questionbank/mocks"
	"rmfaudit/internal/questionbank/store/memory"
	"rmfaudit/pkg/platform/circuit"
	"rmfaudit/pkg/platform/sentinel"
)

func TestGuarded_PassesThroughOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	bank := mocks.NewMockBank(ctrl)
	want := []questionbank.Question{{ID: "SA-01", SubQuestion: "q"}}
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).Return(want, nil)

	g := questionbank.NewGuarded(bank)
	got, err := g.LoadQuestions(context.Background(), category.Safe)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGuarded_WrapsFailuresAsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	bank := mocks.NewMockBank(ctrl)
	boom := errors.New("db down")
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).Return(nil, boom)

	g := questionbank.NewGuarded(bank)
	_, err := g.LoadQuestions(context.Background(), category.Safe)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestGuarded_TimeoutBoundsSlowSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	bank := mocks.NewMockBank(ctrl)
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).DoAndReturn(
		func(ctx context.Context, _ category.Category) ([]questionbank.Question, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	m := metrics.New(prometheus.NewRegistry())
	g := questionbank.NewGuarded(bank, questionbank.WithTimeout(10*time.Millisecond), questionbank.WithMetrics(m))
	_, err := g.LoadQuestions(context.Background(), category.Safe)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadFailures.WithLabelValues("timeout")))
}

func TestGuarded_BreakerOpensAndRecovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	bank := mocks.NewMockBank(ctrl)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	breaker := circuit.New("qb",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)

	var mu sync.Mutex
	var transitions []bool
	m := metrics.New(prometheus.NewRegistry())
	g := questionbank.NewGuarded(bank,
		questionbank.WithBreaker(breaker),
		questionbank.WithMetrics(m),
		questionbank.WithStateListener(func(_ context.Context, opened bool) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, opened)
		}),
	)

	boom := errors.New("db down")
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).Return(nil, boom).Times(2)
	for range 2 {
		_, err := g.LoadQuestions(context.Background(), category.Safe)
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
	}
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerOpen))

	// Open breaker short-circuits without calling the source.
	_, err := g.LoadQuestions(context.Background(), category.Safe)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadFailures.WithLabelValues("breaker_open")))

	now = now.Add(2 * time.Minute)
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).Return([]questionbank.Question{{ID: "SA-01"}}, nil)
	_, err = g.LoadQuestions(context.Background(), category.Safe)
	require.NoError(t, err)
	assert.False(t, breaker.IsOpen())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BreakerOpen))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestGuarded_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	ctrl := gomock.NewController(t)
	bank := mocks.NewMockBank(ctrl)
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).Return(nil, context.Canceled).Times(3)

	breaker := circuit.New("qb", circuit.WithFailureThreshold(1))
	g := questionbank.NewGuarded(bank, questionbank.WithBreaker(breaker))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for range 3 {
		_, err := g.LoadQuestions(ctx, category.Safe)
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
	}
	assert.False(t, breaker.IsOpen())
}

func TestWarmup(t *testing.T) {
	t.Run("counts questions per category", func(t *testing.T) {
		store := memory.New()
		store.Put(category.Safe, []questionbank.Question{{ID: "a"}, {ID: "b"}})
		store.Put(category.ValidReliable, []questionbank.Question{{ID: "c"}})

		counts, err := questionbank.Warmup(context.Background(), store, []category.Category{category.Safe, category.ValidReliable, category.Explainable})
		require.NoError(t, err)
		assert.Equal(t, map[category.Category]int{
			category.Safe:          2,
			category.ValidReliable: 1,
			category.Explainable:   0,
		}, counts)
	})

	t.Run("any failure fails the warmup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bank := mocks.NewMockBank(ctrl)
		boom := errors.New("boom")
		bank.EXPECT().LoadQuestions(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c category.Category) ([]questionbank.Question, error) {
				if c == category.Safe {
					return nil, boom
				}
				return nil, nil
			}).AnyTimes()

		_, err := questionbank.Warmup(context.Background(), bank, category.All())
		require.ErrorIs(t, err, boom)
	})
}
