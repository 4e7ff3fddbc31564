package enums

import "fmt"

// OrderRequestStatus tracks a reseller's order request as seen by a stockist.
type OrderRequestStatus string

const (
	OrderRequestStatusPending  OrderRequestStatus = "pending"
	OrderRequestStatusAccepted OrderRequestStatus = "accepted"
	OrderRequestStatusRejected OrderRequestStatus = "rejected"
)

var validOrderRequestStatuses = []OrderRequestStatus{
	OrderRequestStatusPending,
	OrderRequestStatusAccepted,
	OrderRequestStatusRejected,
}

// String implements fmt.Stringer.
func (s OrderRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderRequestStatus.
func (s OrderRequestStatus) IsValid() bool {
	for _, candidate := range validOrderRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderRequestStatus converts raw input into an OrderRequestStatus.
func ParseOrderRequestStatus(value string) (OrderRequestStatus, error) {
	for _, candidate := range validOrderRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order request status %q", value)
}
