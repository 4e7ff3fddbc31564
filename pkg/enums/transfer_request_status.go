package enums

import "fmt"

// TransferRequestStatus tracks the lifecycle of a return/replacement request.
type TransferRequestStatus string

const (
	TransferRequestStatusPending    TransferRequestStatus = "pending"
	TransferRequestStatusApproved   TransferRequestStatus = "approved"
	TransferRequestStatusInTransit  TransferRequestStatus = "in_transit"
	TransferRequestStatusDispatched TransferRequestStatus = "dispatched"
	TransferRequestStatusReceived   TransferRequestStatus = "received"
	TransferRequestStatusRejected   TransferRequestStatus = "rejected"
)

var validTransferRequestStatuses = []TransferRequestStatus{
	TransferRequestStatusPending,
	TransferRequestStatusApproved,
	TransferRequestStatusInTransit,
	TransferRequestStatusDispatched,
	TransferRequestStatusReceived,
	TransferRequestStatusRejected,
}

// String implements fmt.Stringer.
func (s TransferRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferRequestStatus.
func (s TransferRequestStatus) IsValid() bool {
	for _, candidate := range validTransferRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the request is settled in this status.
func (s TransferRequestStatus) IsTerminal() bool {
	return s == TransferRequestStatusReceived || s == TransferRequestStatusRejected
}

// ParseTransferRequestStatus converts raw input into a TransferRequestStatus.
func ParseTransferRequestStatus(value string) (TransferRequestStatus, error) {
	for _, candidate := range validTransferRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer request status %q", value)
}
