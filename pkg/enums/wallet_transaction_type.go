package enums

import "fmt"

// WalletTransactionType distinguishes money entering or leaving a wallet.
type WalletTransactionType string

const (
	WalletTransactionTypeCredit WalletTransactionType = "CREDIT"
	WalletTransactionTypeDebit  WalletTransactionType = "DEBIT"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeCredit,
	WalletTransactionTypeDebit,
}

// String implements fmt.Stringer.
func (t WalletTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
