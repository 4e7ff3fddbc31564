package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/catalog"
	"github.com/dhruvsahani/distrilink-backend/internal/directory"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/pricing"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	"github.com/dhruvsahani/distrilink-backend/pkg/config"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

// Service creates orders atomically and drives the order state machine.
type Service interface {
	CreateBulkOrder(ctx context.Context, input CreateBulkOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.OrderHistory, error)
	History(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error)

	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.OrderRequest, error)
	FlagForTransfer(ctx context.Context, requestID uuid.UUID) error
	RunAutoTransferSweep(ctx context.Context) (*AutoTransferReport, error)
}

type service struct {
	client    *db.Client
	repo      Repository
	wallets   wallet.Service
	stocks    stock.Service
	catalog   catalog.Service
	directory directory.Service
	notifier  notifications.Service
	cfg       config.OrdersConfig
	logg      *logger.Logger
}

// NewService wires the order service with its collaborators.
func NewService(
	client *db.Client,
	repo Repository,
	wallets wallet.Service,
	stocks stock.Service,
	catalogSvc catalog.Service,
	directorySvc directory.Service,
	notifier notifications.Service,
	cfg config.OrdersConfig,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if stocks == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if directorySvc == nil {
		return nil, fmt.Errorf("directory service required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client:    client,
		repo:      repo,
		wallets:   wallets,
		stocks:    stocks,
		catalog:   catalogSvc,
		directory: directorySvc,
		notifier:  notifier,
		cfg:       cfg,
		logg:      logg,
	}, nil
}

// pricedItem is one validated input line with its resolved quote and seller.
type pricedItem struct {
	input    BulkOrderItemInput
	sellerID uuid.UUID
	quote    *pricing.Quote
}

func (s *service) CreateBulkOrder(ctx context.Context, input CreateBulkOrderInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "buyer id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "order needs at least one item")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("item %d: product id is required", i))
		}
		if item.Quantity <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
	}

	buyer, err := s.directory.GetUser(ctx, input.BuyerID)
	if err != nil {
		return nil, err
	}

	buyerWallet, err := s.wallets.Balance(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	minBalance, err := decimal.NewFromString(s.cfg.MinWalletBalance)
	if err != nil {
		minBalance = decimal.RequireFromString("10.00")
	}
	if buyerWallet.Balance.LessThan(minBalance) {
		return nil, apperrors.New(apperrors.CodeInsufficientFunds, "wallet balance below order minimum").
			WithDetails(map[string]string{
				"balance": buyerWallet.Balance.StringFixed(2),
				"minimum": minBalance.StringFixed(2),
			})
	}

	priced, total, err := s.priceItems(ctx, buyer, input.Items)
	if err != nil {
		return nil, err
	}

	// An order sells from exactly one seller; mixed-seller input falls back
	// to the first item's seller for the whole order.
	sellerID := priced[0].sellerID

	order := &models.Order{
		BuyerID:    buyer.ID,
		SellerID:   sellerID,
		Status:     enums.OrderStatusNew,
		TotalPrice: total,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		// Wallet moves first, batches second; both guarded, so concurrent
		// orders against the same funds or stock serialize safely.
		if _, err := s.wallets.DebitTx(ctx, tx, wallet.EntryInput{
			UserID:      buyer.ID,
			Amount:      total,
			Description: "bulk order payment",
			OrderID:     &order.ID,
		}); err != nil {
			return err
		}

		var items []models.OrderItem
		for _, line := range priced {
			allocations, err := s.stocks.AllocateTx(ctx, tx, stock.AllocateInput{
				ProductID:   line.input.ProductID,
				VariantID:   line.input.VariantID,
				OwnerID:     sellerID,
				Quantity:    line.input.Quantity,
				Action:      enums.StockActionOrder,
				ReferenceID: order.ID.String(),
			})
			if err != nil {
				return err
			}
			for _, alloc := range allocations {
				items = append(items, models.OrderItem{
					OrderID:         order.ID,
					ProductID:       line.input.ProductID,
					VariantID:       line.input.VariantID,
					Quantity:        alloc.Quantity,
					UnitPrice:       line.quote.UnitPrice,
					DiscountPct:     line.quote.DiscountPct,
					GSTPct:          line.quote.GSTPct,
					LineTotal:       line.quote.UnitNet.Mul(decimal.NewFromInt(int64(alloc.Quantity))),
					BatchNumber:     alloc.Batch.BatchNumber,
					ManufactureDate: alloc.Batch.ManufactureDate,
					ExpiryDate:      alloc.Batch.ExpiryDate,
				})
			}
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return err
		}
		order.Items = items

		return repo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:        order.ID,
			PreviousStatus: enums.OrderStatusNew,
			CurrentStatus:  enums.OrderStatusNew,
			ActorID:        buyer.ID,
			Notes:          "order created",
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyOrder(ctx, order, buyer,
		"Order placed", fmt.Sprintf("Order %s placed for %s", order.ID, total.StringFixed(2)))

	return order, nil
}

func (s *service) priceItems(ctx context.Context, buyer *models.User, items []BulkOrderItemInput) ([]pricedItem, decimal.Decimal, error) {
	priced := make([]pricedItem, 0, len(items))
	total := decimal.Zero

	for i, item := range items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		var variantID uuid.UUID
		if item.VariantID != nil {
			variant, variantProduct, err := s.catalog.GetVariant(ctx, *item.VariantID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			if variantProduct.ID != product.ID {
				return nil, decimal.Zero, apperrors.New(apperrors.CodeValidation,
					fmt.Sprintf("item %d: variant does not belong to product", i))
			}
			variantID = variant.ID
		}

		sellerID, err := s.resolveSeller(ctx, buyer, product)
		if err != nil {
			return nil, decimal.Zero, err
		}

		var (
			flat  *models.VariantPrice
			tiers []models.BulkPrice
		)
		if variantID != uuid.Nil {
			if flat, err = s.catalog.GetRoleFlatPrice(ctx, variantID, sellerID, buyer.Role); err != nil {
				return nil, decimal.Zero, err
			}
			if tiers, err = s.catalog.GetBulkTiers(ctx, variantID); err != nil {
				return nil, decimal.Zero, err
			}
		}

		quote, err := pricing.Resolve(pricing.ResolveInput{
			Quantity:  item.Quantity,
			FlatPrice: flat,
			BulkTiers: tiers,
		})
		if err != nil {
			return nil, decimal.Zero, err
		}

		priced = append(priced, pricedItem{input: item, sellerID: sellerID, quote: quote})
		total = total.Add(quote.LineTotal)
	}

	return priced, total, nil
}

// resolveSeller walks the distribution chain: resellers buy from their
// assigned stockist (default stockist when unassigned), everyone else buys
// from the product owner.
func (s *service) resolveSeller(ctx context.Context, buyer *models.User, product *models.Product) (uuid.UUID, error) {
	if buyer.Role != enums.RoleReseller {
		return product.OwnerID, nil
	}

	assignment, err := s.directory.GetStockistAssignment(ctx, buyer.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if assignment != nil {
		return assignment.StockistID, nil
	}

	stockist, err := s.directory.GetDefaultStockist(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return stockist.ID, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if apperrors.As(err) != nil {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeNotFound, err, "order not found")
	}
	return order, nil
}

func (s *service) History(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}
	return s.repo.ListHistory(ctx, orderID)
}

func (s *service) notifyOrder(ctx context.Context, order *models.Order, buyer *models.User, title, message string) {
	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.BuyerID,
		Title:   title,
		Message: message,
		Type:    enums.NotificationTypeOrder,
		URL:     "/orders/" + order.ID.String(),
	})
	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.SellerID,
		Title:   title,
		Message: message,
		Type:    enums.NotificationTypeOrder,
		URL:     "/orders/" + order.ID.String(),
	})
	if buyer != nil && buyer.Email != "" {
		s.notifier.Email(ctx, buyer.Email, title, message)
	}
}
