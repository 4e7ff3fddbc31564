package enums

import "fmt"

// StockAction labels why a batch quantity changed. Every stock mutation
// writes exactly one history row carrying its action.
type StockAction string

const (
	StockActionAdd                          StockAction = "ADD"
	StockActionRemove                       StockAction = "REMOVE"
	StockActionOrder                        StockAction = "ORDER"
	StockActionReturn                       StockAction = "RETURN"
	StockActionAdjust                       StockAction = "ADJUST"
	StockActionExpired                      StockAction = "EXPIRED"
	StockActionReplacementStockDeducted     StockAction = "REPLACEMENT_STOCK_DEDUCTED"
	StockActionReplacementDone              StockAction = "REPLACEMENTDONE"
	StockActionExchangedStockAdded          StockAction = "EXCHANGED_STOCK_ADDED"
	StockActionRequestRejectedStockRestored StockAction = "REQUEST_REJECTED_STOCK_RESTORED"
	StockActionCustomerPurchase             StockAction = "CUSTOMER_PURCHASE"
)

var validStockActions = []StockAction{
	StockActionAdd,
	StockActionRemove,
	StockActionOrder,
	StockActionReturn,
	StockActionAdjust,
	StockActionExpired,
	StockActionReplacementStockDeducted,
	StockActionReplacementDone,
	StockActionExchangedStockAdded,
	StockActionRequestRejectedStockRestored,
	StockActionCustomerPurchase,
}

// String implements fmt.Stringer.
func (a StockAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known StockAction.
func (a StockAction) IsValid() bool {
	for _, candidate := range validStockActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseStockAction converts raw input into a StockAction.
func ParseStockAction(value string) (StockAction, error) {
	for _, candidate := range validStockActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock action %q", value)
}
