package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"leadhub/internal/app"
	cfhandler "leadhub/internal/canonicalfield/handler"
	deduphandler "leadhub/internal/dedup/handler"
	ingesthandler "leadhub/internal/ingest/handler"
	leadhandler "leadhub/internal/lead/handler"
	"leadhub/internal/platform/config"
	"leadhub/internal/platform/httpserver"
	"leadhub/internal/platform/logger"
	producthandler "leadhub/internal/product/handler"
	httptransport "leadhub/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("leadhub stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close dependencies", "error", err)
		}
	}()

	report, err := a.Seed(ctx)
	if err != nil {
		return err
	}
	if report.Created > 0 || report.Skipped > 0 {
		log.InfoContext(ctx, "seed applied", "created", report.Created, "skipped", report.Skipped)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Gatherer:       a.Registry,
		Checks:         a.Checks(),
		RateLimit:      a.RateLimit.Handler,
		Modules: []httptransport.Registrar{
			leadhandler.New(a.Leads, log, a.Metrics),
			ingesthandler.New(a.Ingest, log, a.Metrics),
			producthandler.New(a.Products, log, a.Metrics),
			cfhandler.New(a.CanonicalField, log, a.Metrics),
			deduphandler.New(a.Dedup, log, a.Metrics),
		},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	if a.Worker != nil {
		g.Go(func() error {
			return a.Worker.Run(gctx)
		})
	}
	return g.Wait()
}
