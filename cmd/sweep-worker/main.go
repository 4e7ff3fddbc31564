package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhruvsahani/distrilink-backend/internal/catalog"
	"github.com/dhruvsahani/distrilink-backend/internal/cron"
	"github.com/dhruvsahani/distrilink-backend/internal/directory"
	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/orders"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	"github.com/dhruvsahani/distrilink-backend/pkg/config"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
	"github.com/dhruvsahani/distrilink-backend/pkg/metrics"
	"github.com/dhruvsahani/distrilink-backend/pkg/migrate"
	"github.com/dhruvsahani/distrilink-backend/pkg/redis"
)

const lockScopeFormat = "sweep-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "sweep-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "sweep-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sweep-worker",
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

	conn := dbClient.DB()

	walletService, err := wallet.NewService(dbClient, wallet.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	stockService, err := stock.NewService(dbClient, stock.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}
	expiryService, err := expiry.NewService(dbClient, expiry.NewRepository(conn), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(conn)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	directoryService, err := directory.NewService(conn)
	if err != nil {
		logg.Error(context.Background(), "failed to create directory service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(conn, &notifications.LogMailer{From: cfg.Email.FromAddress, Logg: logg}, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(
		dbClient,
		orders.NewRepository(conn),
		walletService,
		stockService,
		catalogService,
		directoryService,
		notificationsService,
		cfg.Orders,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewExpirySweepJob(cron.ExpirySweepJobParams{
		Logger:        logg,
		Expiries:      expiryService,
		ThresholdDays: cfg.Expiry.ThresholdDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry sweep job", err)
		os.Exit(1)
	}
	autoTransferJob, err := cron.NewAutoTransferJob(cron.AutoTransferJobParams{
		Logger: logg,
		Orders: ordersService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auto transfer job", err)
		os.Exit(1)
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		Notifications: notificationsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewSweepJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockScope(cfg.App.Env)), cfg.Sweep.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, autoTransferJob, cleanupJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Sweep.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting sweep worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sweep worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sweep worker shutting down gracefully")
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockScopeFormat, env)
}
