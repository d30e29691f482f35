package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/catalogo-backend/api/routes"
	"github.com/angelmondragon/catalogo-backend/internal/products"
	"github.com/angelmondragon/catalogo-backend/pkg/config"
	"github.com/angelmondragon/catalogo-backend/pkg/db"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/metrics"
	"github.com/angelmondragon/catalogo-backend/pkg/migrate"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	store, err := disk.NewStore(cfg.Uploads.Dir, cfg.Uploads.BasePath)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare uploads directory", err)
		os.Exit(1)
	}

	repo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(repo, store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SweepOrphans {
		sweeper, err := products.NewSweeper(repo, store, logg, cfg.FeatureFlags.SweepGracePeriod)
		if err != nil {
			logg.Error(context.Background(), "failed to create orphan sweeper", err)
			os.Exit(1)
		}
		report, err := sweeper.Sweep(context.Background())
		ctx := logg.WithFields(context.Background(), map[string]any{
			"scanned": report.Scanned,
			"orphans": report.Orphans,
			"removed": report.Removed,
		})
		if err != nil {
			logg.Warn(ctx, "orphan sweep finished with errors")
		} else {
			logg.Info(ctx, "orphan sweep completed")
		}
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, store, productService, httpMetrics, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
