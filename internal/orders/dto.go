package orders

import (
	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// BulkOrderItemInput is one requested line of a bulk order.
type BulkOrderItemInput struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity"`
}

// CreateBulkOrderInput creates one atomic order for a buyer.
type CreateBulkOrderInput struct {
	BuyerID uuid.UUID            `json:"buyer_id"`
	Items   []BulkOrderItemInput `json:"items"`
}

// TransitionInput moves an order to a new status.
type TransitionInput struct {
	OrderID   uuid.UUID         `json:"order_id"`
	ActorID   uuid.UUID         `json:"actor_id"`
	NewStatus enums.OrderStatus `json:"new_status"`
	Notes     string            `json:"notes"`
}

// CreateRequestInput is a reseller's restock ask aimed at their stockist.
type CreateRequestInput struct {
	ResellerID uuid.UUID  `json:"reseller_id"`
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  *uuid.UUID `json:"variant_id"`
	Quantity   int        `json:"quantity"`
}

// AutoTransferReport summarizes one auto-transfer sweep run.
type AutoTransferReport struct {
	Scanned     int
	Retargeted  int
	SkippedSame int
}
