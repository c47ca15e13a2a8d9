package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bolajoy/bolajoy-backend/api/routes"
	"github.com/bolajoy/bolajoy-backend/internal/children"
	"github.com/bolajoy/bolajoy-backend/internal/debts"
	"github.com/bolajoy/bolajoy-backend/internal/enrollments"
	"github.com/bolajoy/bolajoy-backend/pkg/config"
	"github.com/bolajoy/bolajoy-backend/pkg/db"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
	"github.com/bolajoy/bolajoy-backend/pkg/metrics"
	"github.com/bolajoy/bolajoy-backend/pkg/migrate"
	"github.com/bolajoy/bolajoy-backend/pkg/outbox"
	"github.com/bolajoy/bolajoy-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	childrenRepo := children.NewRepository(dbClient.DB())
	childDirectory, err := children.NewService(childrenRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create children service", err)
		os.Exit(1)
	}

	enrollmentsService, err := enrollments.NewService(
		enrollments.NewRepository(dbClient.DB()),
		childrenRepo,
		dbClient,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create enrollments service", err)
		os.Exit(1)
	}

	billingMetrics := metrics.NewBillingJobMetrics(prometheus.DefaultRegisterer)
	debtsService, err := debts.NewService(
		debts.NewRepository(dbClient.DB()),
		childDirectory,
		dbClient,
		outboxService,
		cfg.Billing,
		billingMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create debts service", err)
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
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Enrollments: enrollmentsService,
			Debts:       debtsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
