// Package app assembles stores, services and infrastructure clients from a
// Config. cmd/server and cmd/leadctl share it so both see the same wiring.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	cfservice "leadhub/internal/canonicalfield/service"
	cfstore "leadhub/internal/canonicalfield/store"
	"leadhub/internal/dedup/lock"
	dedupmetrics "leadhub/internal/dedup/metrics"
	"leadhub/internal/dedup/queue"
	"leadhub/internal/dedup/rules"
	dedupservice "leadhub/internal/dedup/service"
	ingestservice "leadhub/internal/ingest/service"
	leadmetrics "leadhub/internal/lead/metrics"
	leadservice "leadhub/internal/lead/service"
	leadstore "leadhub/internal/lead/store"
	"leadhub/internal/platform/amqp"
	"leadhub/internal/platform/config"
	"leadhub/internal/platform/kafka"
	"leadhub/internal/platform/metrics"
	"leadhub/internal/platform/postgres"
	"leadhub/internal/platform/redis"
	productservice "leadhub/internal/product/service"
	productstore "leadhub/internal/product/store"
	ratelimitmetrics "leadhub/internal/ratelimit/metrics"
	ratelimit "leadhub/internal/ratelimit/middleware"
	"leadhub/internal/ratelimit/models"
	ratelimitstore "leadhub/internal/ratelimit/store"
	"leadhub/internal/seed"
	"leadhub/pkg/platform/circuit"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/tx"
)

const (
	productCacheSize = 10_000
	topicPartitions  = 3
	topicReplication = 1
)

// Publisher is an events publisher that owns a transport.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) error
	Close() error
}

// App is the assembled process.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Leads          *leadservice.Service
	Products       *productservice.Service
	CanonicalField *cfservice.Service
	Dedup          *dedupservice.Service
	Ingest         *ingestservice.Service

	// Worker is set when AMQP is configured.
	Worker *queue.Worker
	// RateLimit guards the HTTP API per client.
	RateLimit *ratelimit.Middleware

	fieldStore seed.FieldStore
	checks     map[string]func(ctx context.Context) error
	closers    []func() error
}

// Build connects every configured dependency and wires the services. An
// empty URL for a dependency selects its in-memory replacement. On error
// everything opened so far is closed.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		checks:   map[string]func(ctx context.Context) error{},
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.NewWith(a.Registry)

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}
	shared, err := a.openRedis(ctx)
	if err != nil {
		return nil, err
	}
	a.RateLimit = ratelimit.New(shared.limits, logger,
		ratelimit.WithLimits(rateLimits(cfg.RateLimit)),
		ratelimit.WithMetrics(ratelimitmetrics.NewWith(a.Registry)),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	)
	publisher, err := a.openEvents(ctx)
	if err != nil {
		return nil, err
	}

	cache, err := productservice.NewCache(productCacheSize)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { cache.Close(); return nil })

	a.Products = productservice.New(st.products, st.sources, st.leads,
		productservice.WithLogger(logger),
		productservice.WithCache(cache),
	)
	a.CanonicalField = cfservice.New(st.fields, cfservice.WithLogger(logger))
	a.Leads = leadservice.New(st.leads, a.Products,
		leadservice.WithLogger(logger),
		leadservice.WithEventPublisher(publisher),
		leadservice.WithMetrics(leadmetrics.NewWith(a.Registry)),
	)
	a.Dedup = dedupservice.New(st.leads, st.products, st.sources, st.fields, shared.rules,
		dedupservice.WithLogger(logger),
		dedupservice.WithMetrics(dedupmetrics.NewWith(a.Registry)),
		dedupservice.WithEventPublisher(publisher),
		dedupservice.WithLocker(shared.locker),
		dedupservice.WithLockTTL(cfg.Dedup.LockTTL),
		dedupservice.WithTxRunner(st.tx),
		dedupservice.WithCacheInvalidator(a.Products),
	)

	ingestOpts := []ingestservice.Option{
		ingestservice.WithLogger(logger),
		ingestservice.WithEventPublisher(publisher),
		ingestservice.WithDeduper(a.Dedup),
	}
	if cfg.AMQP.URL != "" {
		broker, err := amqp.Connect(ctx, cfg.AMQP.URL, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, broker.Close)
		a.checks["rabbitmq"] = broker.Health
		a.Worker = queue.NewWorker(broker.Ch, a.Dedup, logger)
		ingestOpts = append(ingestOpts, ingestservice.WithJobQueue(queue.NewPublisher(broker.Ch)))
	}
	a.Ingest = ingestservice.New(a.Leads, a.Products, st.fields, ingestOpts...)
	a.fieldStore = st.fields
	return a, nil
}

// Checks returns the dependency probes for the health endpoint, keyed by
// dependency name.
func (a *App) Checks() map[string]func(ctx context.Context) error {
	return a.checks
}

// Seed applies the configured seed file. Without one it does nothing.
func (a *App) Seed(ctx context.Context) (seed.Report, error) {
	if a.Config.SeedFile == "" {
		return seed.Report{}, nil
	}
	file, err := seed.LoadFile(a.Config.SeedFile)
	if err != nil {
		return seed.Report{}, err
	}
	return seed.Apply(ctx, file, a.fieldStore, a.Products, a.Logger)
}

// Close releases every dependency in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

type stores struct {
	leads interface {
		leadservice.Store
		dedupservice.LeadStore
		productservice.LeadCounter
	}
	products interface {
		productservice.ProductStore
		dedupservice.ProductStore
	}
	sources interface {
		productservice.SourceStore
		dedupservice.SourceStore
	}
	fields interface {
		cfservice.Store
		seed.FieldStore
		ingestservice.FieldSource
	}
	tx dedupservice.TxRunner
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	if a.Config.Database.URL == "" {
		a.Logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return stores{
			leads:    leadstore.NewInMemory(),
			products: productstore.NewProductMemory(),
			sources:  productstore.NewSourceMemory(),
			fields:   cfstore.NewInMemory(),
			tx:       tx.Passthrough{},
		}, nil
	}

	db, err := postgres.Open(ctx, a.Config.Database.URL, postgres.DefaultOptions(), a.Logger)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, db.Close)
	if err := postgres.Migrate(ctx, db); err != nil {
		return stores{}, err
	}
	a.checks["postgres"] = func(ctx context.Context) error {
		return postgres.Health(ctx, db)
	}
	return postgresStores(db), nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		leads:    leadstore.NewPostgres(db),
		products: productstore.NewProductPostgres(db),
		sources:  productstore.NewSourcePostgres(db),
		fields:   cfstore.NewPostgres(db),
		tx:       tx.NewRunner(db, 0),
	}
}

// redisBacked are the stores that must be shared between instances.
type redisBacked struct {
	locker dedupservice.Locker
	rules  dedupservice.RulesStore
	limits ratelimit.Store
}

func (a *App) openRedis(ctx context.Context) (redisBacked, error) {
	client, err := redis.New(ctx, a.Config.Redis)
	if err != nil {
		return redisBacked{}, err
	}
	if client == nil {
		return redisBacked{
			locker: lock.NewMemory(),
			rules:  rules.NewMemory(),
			limits: ratelimitstore.NewInMemory(),
		}, nil
	}
	a.closers = append(a.closers, client.Close)
	a.checks["redis"] = client.Health
	return redisBacked{
		locker: lock.NewRedis(client.Client),
		rules:  rules.NewRedis(client.Client),
		limits: ratelimitstore.NewRedis(client.Client),
	}, nil
}

func rateLimits(cfg config.RateLimit) map[models.EndpointClass]models.Limit {
	return map[models.EndpointClass]models.Limit{
		models.ClassUpload: {Requests: cfg.UploadsPerMinute, Window: time.Minute},
		models.ClassRun:    {Requests: cfg.RunsPerMinute, Window: time.Minute},
	}
}

func (a *App) openEvents(ctx context.Context) (Publisher, error) {
	if len(a.Config.Kafka.Brokers) == 0 {
		return events.NewLogPublisher(a.Logger), nil
	}
	client, err := kafka.Connect(ctx, a.Config.Kafka.Brokers, a.Config.Kafka.Topic, a.Logger)
	if err != nil {
		return nil, err
	}
	publisher := events.NewKafkaPublisher(client, a.Config.Kafka.Topic,
		events.WithLogger(a.Logger),
		events.WithBreaker(circuit.New("kafka"), events.NewLogPublisher(a.Logger)),
	)
	a.closers = append(a.closers, publisher.Close)
	if err := kafka.EnsureTopic(ctx, kafka.NewAdmin(client), a.Config.Kafka.Topic, topicPartitions, topicReplication); err != nil {
		return nil, err
	}
	a.checks["kafka"] = func(ctx context.Context) error {
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("ping kafka: %w", err)
		}
		return nil
	}
	return publisher, nil
}
