package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusNew              OrderStatus = "new"
	OrderStatusAccepted         OrderStatus = "accepted"
	OrderStatusReadyForDispatch OrderStatus = "ready_for_dispatch"
	OrderStatusDispatched       OrderStatus = "dispatched"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusRejected         OrderStatus = "rejected"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAccepted,
	OrderStatusReadyForDispatch,
	OrderStatusDispatched,
	OrderStatusDelivered,
	OrderStatusRejected,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
