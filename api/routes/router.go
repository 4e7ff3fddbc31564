package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dhruvsahani/distrilink-backend/api/controllers"
	"github.com/dhruvsahani/distrilink-backend/api/middleware"
	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/orders"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/internal/transfers"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	"github.com/dhruvsahani/distrilink-backend/pkg/config"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
	"github.com/dhruvsahani/distrilink-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	walletService wallet.Service,
	stockService stock.Service,
	expiryService expiry.Service,
	ordersService orders.Service,
	transfersService transfers.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/wallet", func(r chi.Router) {
		r.Post("/credit", controllers.WalletCredit(walletService, logg))
		r.Post("/debit", controllers.WalletDebit(walletService, logg))
		r.Get("/{userID}", controllers.WalletBalance(walletService, logg))
		r.Get("/{userID}/transactions", controllers.WalletTransactions(walletService, logg))
	})

	r.Route("/api/v1/stock", func(r chi.Router) {
		r.Post("/receive", controllers.ReceiveStock(stockService, logg))
		r.Post("/adjust", controllers.AdjustStock(stockService, logg))
		r.Get("/expiry/{ownerID}", controllers.ListExpiryTrackers(expiryService, logg))
		r.Get("/owners/{ownerID}/batches", controllers.ListBatches(stockService, logg))
		r.Get("/batches/{batchID}/history", controllers.StockHistory(stockService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/bulk", controllers.CreateBulkOrder(ordersService, logg))
		r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
		r.Get("/{orderID}/history", controllers.OrderHistory(ordersService, logg))
		r.Post("/{orderID}/transition", controllers.TransitionOrder(ordersService, logg))
	})

	r.Route("/api/v1/order-requests", func(r chi.Router) {
		r.Post("/", controllers.CreateOrderRequest(ordersService, logg))
		r.Post("/{requestID}/flag-transfer", controllers.FlagOrderRequestForTransfer(ordersService, logg))
	})

	r.Route("/api/v1/transfers", func(r chi.Router) {
		r.Post("/", controllers.CreateTransfer(transfersService, logg))
		r.Get("/{requestID}", controllers.GetTransfer(transfersService, logg))
		r.Post("/{requestID}/transition", controllers.TransitionTransfer(transfersService, logg))
		r.Get("/user/{userID}", controllers.ListTransfers(transfersService, logg))
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/user/{userID}", controllers.ListNotifications(notificationsService, logg))
		r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
	})

	return r
}
