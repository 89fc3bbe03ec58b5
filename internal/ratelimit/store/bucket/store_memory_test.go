package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rmfaudit/internal/ratelimit/models"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryBucketStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "test:allow:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("requests up to limit allowed", func() {
		var result *models.Result
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.ctx, "test:allow:limit", testLimit, testWindow)
		}
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over limit denied with retry hint", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:allow:over", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		s.now = s.now.Add(20 * time.Second)
		result, err := s.store.Allow(s.ctx, "test:allow:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(0, result.Remaining)
		s.Equal(40, result.RetryAfter)
	})

	s.Run("requests slide out of the window", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:allow:slide", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		s.now = s.now.Add(testWindow)
		result, err := s.store.Allow(s.ctx, "test:allow:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})
}

func (s *InMemoryBucketStoreSuite) TestAllowN() {
	first, err := s.store.AllowN(s.ctx, "test:allown", 7, testLimit, testWindow)
	s.Require().NoError(err)
	s.Require().True(first.Allowed)
	s.Equal(3, first.Remaining)

	denied, err := s.store.AllowN(s.ctx, "test:allown", 4, testLimit, testWindow)
	s.Require().NoError(err)
	s.False(denied.Allowed)
	s.Equal(3, denied.Remaining)

	count, err := s.store.GetCurrentCount(s.ctx, "test:allown")
	s.Require().NoError(err)
	s.Equal(7, count)
}

func (s *InMemoryBucketStoreSuite) TestResetAndSweep() {
	_, err := s.store.AllowN(s.ctx, "test:reset", 5, testLimit, testWindow)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(s.ctx, "test:reset"))
	count, err := s.store.GetCurrentCount(s.ctx, "test:reset")
	s.Require().NoError(err)
	s.Zero(count)

	_, err = s.store.Allow(s.ctx, "test:sweep:old", testLimit, testWindow)
	s.Require().NoError(err)
	s.now = s.now.Add(testWindow + time.Second)
	s.Equal(1, s.store.Sweep(s.now))
	s.Empty(s.store.buckets)
}

func (s *InMemoryBucketStoreSuite) TestLazySweep() {
	_, err := s.store.Allow(s.ctx, "test:lazy:old", testLimit, testWindow)
	s.Require().NoError(err)

	s.now = s.now.Add(sweepInterval + time.Second)
	_, err = s.store.Allow(s.ctx, "test:lazy:fresh", testLimit, testWindow)
	s.Require().NoError(err)

	s.Len(s.store.buckets, 1)
	s.Contains(s.store.buckets, "test:lazy:fresh")
}

func (s *InMemoryBucketStoreSuite) TestConcurrent() {
	limit := 100
	key := "test:concurrent"
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for range 200 {
		wg.Go(func() {
			result, err := s.store.Allow(s.ctx, key, limit, testWindow)
			s.NoError(err)
			if result.Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	s.Equal(limit, allowedCount)
}
