package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/dhruvsahani/distrilink-backend/api/routes"
	"github.com/dhruvsahani/distrilink-backend/internal/catalog"
	"github.com/dhruvsahani/distrilink-backend/internal/directory"
	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/orders"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/internal/transfers"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	"github.com/dhruvsahani/distrilink-backend/pkg/config"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
	"github.com/dhruvsahani/distrilink-backend/pkg/migrate"
	"github.com/dhruvsahani/distrilink-backend/pkg/redis"
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
	transfersService, err := transfers.NewService(
		dbClient,
		transfers.NewRepository(conn),
		stockService,
		expiryService,
		directoryService,
		notificationsService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfers service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			walletService,
			stockService,
			expiryService,
			ordersService,
			transfersService,
			notificationsService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}
}
