// Package cache puts a Redis read-through layer in front of a question bank.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
	"rmfaudit/internal/questionbank/metrics"
)

const keyPrefix = "qbank:v1:"

// Client is the subset of *redis.Client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cached serves questions from Redis when present and fills it on a miss.
// Redis failures are logged and the source is used directly.
type Cached struct {
	next    questionbank.Bank
	client  Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Cached)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cached) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cached) {
		c.metrics = m
	}
}

func New(next questionbank.Bank, client Client, ttl time.Duration, opts ...Option) *Cached {
	c := &Cached{next: next, client: client, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func Key(c category.Category) string {
	return keyPrefix + c.String()
}

func (c *Cached) LoadQuestions(ctx context.Context, cat category.Category) ([]questionbank.Question, error) {
	key := Key(cat)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var qs []questionbank.Question
		jsonErr := json.Unmarshal(raw, &qs)
		if jsonErr == nil {
			c.metrics.IncCacheHit()
			return questionbank.Clone(qs), nil
		}
		c.warn(ctx, "discarding undecodable cached questions", key, jsonErr)
	case errors.Is(err, redis.Nil):
	default:
		c.warn(ctx, "question cache read failed", key, err)
	}
	c.metrics.IncCacheMiss()

	qs, err := c.next.LoadQuestions(ctx, cat)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(qs)
	if err != nil {
		return qs, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.warn(ctx, "question cache write failed", key, err)
	}
	return qs, nil
}

// Invalidate drops the cached questions for cat.
func (c *Cached) Invalidate(ctx context.Context, cat category.Category) error {
	return c.client.Del(ctx, Key(cat)).Err()
}

func (c *Cached) warn(ctx context.Context, msg, key string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg, "key", key, "error", err)
}
