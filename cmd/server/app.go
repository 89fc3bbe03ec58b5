package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/handler"
	interviewmetrics "rmfaudit/internal/interview/metrics"
	"rmfaudit/internal/interview/registry"
	"rmfaudit/internal/interview/service"
	"rmfaudit/internal/platform/config"
	"rmfaudit/internal/platform/kafka"
	platformmetrics "rmfaudit/internal/platform/metrics"
	platformmw "rmfaudit/internal/platform/middleware"
	"rmfaudit/internal/platform/postgres"
	platformredis "rmfaudit/internal/platform/redis"
	"rmfaudit/internal/questionbank"
	"rmfaudit/internal/questionbank/cache"
	qbmetrics "rmfaudit/internal/questionbank/metrics"
	qbfile "rmfaudit/internal/questionbank/store/file"
	qbmemory "rmfaudit/internal/questionbank/store/memory"
	qbpostgres "rmfaudit/internal/questionbank/store/postgres"
	rlmetrics "rmfaudit/internal/ratelimit/metrics"
	ratelimit "rmfaudit/internal/ratelimit/middleware"
	"rmfaudit/internal/ratelimit/store/bucket"
	"rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/platform/audit/publisher"
	auditkafka "rmfaudit/pkg/platform/audit/store/kafka"
	auditmemory "rmfaudit/pkg/platform/audit/store/memory"
	auditpostgres "rmfaudit/pkg/platform/audit/store/postgres"
	"rmfaudit/pkg/platform/circuit"
	"rmfaudit/pkg/platform/httputil"
	"rmfaudit/pkg/platform/middleware/identity"
	"rmfaudit/pkg/platform/middleware/metadata"
	"rmfaudit/pkg/platform/middleware/requestid"
	"rmfaudit/pkg/platform/middleware/requesttime"
)

// app owns every long-lived dependency of the server.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	metrics     *prometheus.Registry
	httpMetrics *platformmetrics.Metrics
	publisher   *publisher.Publisher
	sessions    *registry.Registry
	service     *service.Service
	limiter     *ratelimit.Middleware

	health  map[string]func(context.Context) error
	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: prometheus.NewRegistry(),
		health:  make(map[string]func(context.Context) error),
	}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	a.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.httpMetrics = platformmetrics.New(a.metrics)

	pool, err := a.openPostgres(ctx)
	if err != nil {
		return nil, err
	}
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.health["redis"] = rdb.Health
	}

	auditStore, err := a.auditStore(ctx, pool)
	if err != nil {
		return nil, err
	}
	pubOpts := []publisher.Option{publisher.WithLogger(logger)}
	if cfg.Audit.Sink != config.SinkMemory {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.Audit.BufferSize))
	}
	a.publisher = publisher.NewPublisher(auditStore, pubOpts...)
	a.closers = append(a.closers, func() { _ = a.publisher.Close() })

	bank, err := a.questionBank(ctx, pool, rdb)
	if err != nil {
		return nil, err
	}

	a.sessions = registry.New(registry.WithRetentionTTL(cfg.Registry.RetentionTTL))
	a.service = service.New(bank, a.sessions,
		service.WithLogger(logger),
		service.WithAuditPublisher(a.publisher),
		service.WithMetrics(interviewmetrics.New(a.metrics)),
		service.WithTracer(otel.Tracer("rmfaudit/interview")),
	)
	a.limiter = a.rateLimiter(rdb)
	ready = true
	return a, nil
}

func (a *app) openPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	var schema []string
	if a.cfg.QuestionBank.Source == config.SourcePostgres {
		schema = append(schema, qbpostgres.Schema)
	}
	if a.cfg.Audit.Sink == config.SinkPostgres {
		schema = append(schema, auditpostgres.Schema)
	}
	if len(schema) == 0 {
		return nil, nil
	}
	pool, err := postgres.New(ctx, a.cfg.Postgres, schema...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)
	a.health["postgres"] = pool.Ping
	return pool, nil
}

func (a *app) auditStore(ctx context.Context, pool *pgxpool.Pool) (audit.Store, error) {
	switch a.cfg.Audit.Sink {
	case config.SinkKafka:
		client, err := kafka.New(ctx, a.cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		if err := kafka.EnsureTopic(ctx, client, a.cfg.Kafka); err != nil {
			return nil, err
		}
		a.health["kafka"] = client.Ping
		return auditkafka.New(client, a.cfg.Kafka.Topic), nil
	case config.SinkPostgres:
		return auditpostgres.New(pool), nil
	default:
		return auditmemory.NewInMemoryStore(), nil
	}
}

// questionBank builds source -> redis cache -> timeout/breaker guard, then
// warms the cache when configured.
func (a *app) questionBank(ctx context.Context, pool *pgxpool.Pool, rdb *platformredis.Client) (questionbank.Bank, error) {
	source, err := openSource(a.cfg.QuestionBank, pool)
	if err != nil {
		return nil, err
	}

	m := qbmetrics.New(a.metrics)
	bank := source
	if rdb != nil {
		bank = cache.New(bank, rdb, a.cfg.QuestionBank.CacheTTL,
			cache.WithLogger(a.logger),
			cache.WithMetrics(m),
		)
	}
	guarded := questionbank.NewGuarded(bank,
		questionbank.WithTimeout(a.cfg.QuestionBank.Timeout),
		questionbank.WithBreaker(circuit.New("question_bank",
			circuit.WithFailureThreshold(a.cfg.QuestionBank.BreakerThreshold),
			circuit.WithCooldown(a.cfg.QuestionBank.BreakerCooldown),
		)),
		questionbank.WithLogger(a.logger),
		questionbank.WithMetrics(m),
		questionbank.WithStateListener(a.questionBankStateChanged),
	)

	if a.cfg.QuestionBank.Warmup {
		warmCtx, cancel := context.WithTimeout(ctx, 2*a.cfg.QuestionBank.Timeout)
		defer cancel()
		counts, err := questionbank.Warmup(warmCtx, guarded, category.All())
		if err != nil {
			a.logger.WarnContext(ctx, "question bank warmup failed", "error", err)
		} else {
			total := 0
			for _, n := range counts {
				total += n
			}
			a.logger.InfoContext(ctx, "question bank warmed up", "categories", len(counts), "questions", total)
		}
	}
	return guarded, nil
}

func (a *app) questionBankStateChanged(ctx context.Context, opened bool) {
	event := audit.EventQuestionBankRecovered
	reason := "breaker_closed"
	if opened {
		event = audit.EventQuestionBankDegraded
		reason = "breaker_open"
	}
	a.logger.WarnContext(ctx, string(event), "event", string(event), "log_type", "audit", "reason", reason)
	if err := a.publisher.Emit(ctx, audit.Event{Action: string(event), Reason: reason}); err != nil {
		a.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// openSource returns the configured question source without cache or guard.
func openSource(cfg config.QuestionBankConfig, pool *pgxpool.Pool) (questionbank.Bank, error) {
	switch cfg.Source {
	case config.SourcePostgres:
		if pool == nil {
			return nil, errors.New("question_bank.source=postgres requires postgres.url")
		}
		return qbpostgres.New(pool), nil
	case config.SourceMemory:
		seed, err := qbfile.Load(cfg.Path)
		if err != nil {
			return nil, err
		}
		mem := qbmemory.New()
		for _, c := range seed.Categories() {
			qs, _ := seed.LoadQuestions(context.Background(), c)
			mem.Put(c, qs)
		}
		return mem, nil
	default:
		return qbfile.Load(cfg.Path)
	}
}

func (a *app) rateLimiter(rdb *platformredis.Client) *ratelimit.Middleware {
	rl := a.cfg.RateLimit
	opts := []ratelimit.Option{
		ratelimit.WithDisabled(!rl.Enabled),
		ratelimit.WithAuditPublisher(a.publisher),
		ratelimit.WithMetrics(rlmetrics.New(a.metrics)),
	}
	if rdb == nil {
		return ratelimit.New(bucket.NewInMemoryBucketStore(), rl.Requests, rl.Window, a.logger, opts...)
	}
	opts = append(opts, ratelimit.WithFallback(bucket.NewInMemoryBucketStore()))
	return ratelimit.New(bucket.NewRedisBucketStore(rdb), rl.Requests, rl.Window, a.logger, opts...)
}

// Router assembles the HTTP surface.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		requesttime.Middleware,
		metadata.ClientMetadata,
		platformmw.Recover(a.logger),
		platformmw.Logger(a.logger),
		a.httpMetrics.Middleware,
	)

	r.Get("/healthz", a.handleHealth)
	if a.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", a.httpMetrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(identity.Extract, a.limiter.Limit)
		handler.New(a.service, a.logger).Register(r, identity.RequireUser(a.logger))
	})
	return r
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Sessions     int               `json:"sessions"`
	OpenSessions int               `json:"open_sessions"`
	Runs         int               `json:"runs"`
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	stats := a.sessions.Stats()
	resp := healthResponse{
		Status:       "ok",
		Sessions:     stats.Sessions,
		OpenSessions: stats.OpenSessions,
		Runs:         stats.Runs,
	}
	status := http.StatusOK
	if len(a.health) > 0 {
		resp.Dependencies = make(map[string]string, len(a.health))
	}
	for name, check := range a.health {
		if err := check(ctx); err != nil {
			a.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			resp.Dependencies[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}

// Close releases dependencies in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
