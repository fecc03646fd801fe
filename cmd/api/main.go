package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/electrohogar/storefront-backend/api/routes"
	"github.com/electrohogar/storefront-backend/api/validators"
	"github.com/electrohogar/storefront-backend/internal/admin"
	"github.com/electrohogar/storefront-backend/internal/catalog"
	"github.com/electrohogar/storefront-backend/internal/contact"
	"github.com/electrohogar/storefront-backend/internal/recommendations"
	"github.com/electrohogar/storefront-backend/internal/search"
	"github.com/electrohogar/storefront-backend/internal/views"
	"github.com/electrohogar/storefront-backend/internal/wishlist"
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/db"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/metrics"
	"github.com/electrohogar/storefront-backend/pkg/migrate"
	"github.com/electrohogar/storefront-backend/pkg/redis"
	"github.com/electrohogar/storefront-backend/pkg/resend"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(promRegistry)

	upstream := catalogapi.NewClient(cfg.Upstream.BaseURL, catalogapi.WithMetrics(storefrontMetrics))

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{
		Upstream: upstream,
		Cache:    redisClient,
		Config:   cfg.Catalog,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	searchSvc, err := search.NewService(search.ServiceParams{
		Searcher:  upstream,
		Suggester: upstream,
		Config:    cfg.Search,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	viewsSvc, err := views.NewService(views.ServiceParams{
		Tracker: upstream,
		Store:   redisClient,
		Config:  cfg.Views,
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create views service", err)
		os.Exit(1)
	}

	recommendationsSvc, err := recommendations.NewService(recommendations.ServiceParams{
		Fetcher: upstream,
		Recents: viewsSvc,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recommendations service", err)
		os.Exit(1)
	}

	wishlistRegistry, err := wishlist.NewRegistry(upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist registry", err)
		os.Exit(1)
	}

	contactSvc, err := contact.NewService(contact.ServiceParams{
		Repo:      contact.NewRepository(dbClient.DB()),
		Mailer:    resend.NewClient(cfg.Resend),
		Limiter:   redisClient,
		Validator: validators.Validator(),
		Config:    cfg.Contact,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	adminSvc, err := admin.NewService(admin.ServiceParams{
		Forwarder: upstream,
		Purger:    catalogSvc,
		Validator: validators.Validator(),
		Config:    cfg.Revalidation,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			promRegistry,
			dbClient,
			redisClient,
			upstream,
			catalogSvc,
			searchSvc,
			viewsSvc,
			recommendationsSvc,
			wishlistRegistry,
			contactSvc,
			adminSvc,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
		return
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := <-serveErr; err != nil && err != http.ErrServerClosed {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		logg.Error(ctx, "shutdown finished with errors", errs)
		os.Exit(1)
	}
	logg.Info(ctx, "server stopped cleanly")
}
