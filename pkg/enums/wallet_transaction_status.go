package enums

import "fmt"

// WalletTransactionStatus tracks the settlement state of a wallet transaction.
type WalletTransactionStatus string

const (
	WalletTransactionStatusPending  WalletTransactionStatus = "PENDING"
	WalletTransactionStatusSuccess  WalletTransactionStatus = "SUCCESS"
	WalletTransactionStatusFailed   WalletTransactionStatus = "FAILED"
	WalletTransactionStatusRefund   WalletTransactionStatus = "REFUND"
	WalletTransactionStatusReceived WalletTransactionStatus = "RECEIVED"
)

var validWalletTransactionStatuses = []WalletTransactionStatus{
	WalletTransactionStatusPending,
	WalletTransactionStatusSuccess,
	WalletTransactionStatusFailed,
	WalletTransactionStatusRefund,
	WalletTransactionStatusReceived,
}

// String implements fmt.Stringer.
func (s WalletTransactionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WalletTransactionStatus.
func (s WalletTransactionStatus) IsValid() bool {
	for _, candidate := range validWalletTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWalletTransactionStatus converts raw input into a WalletTransactionStatus.
func ParseWalletTransactionStatus(value string) (WalletTransactionStatus, error) {
	for _, candidate := range validWalletTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction status %q", value)
}
