package enums

import "fmt"

// ExpiryStatus bands a batch by how close it is to its expiry date.
type ExpiryStatus string

const (
	// ExpiryStatusExpiringSoon covers 16-30 remaining days.
	ExpiryStatusExpiringSoon ExpiryStatus = "EXPIRING_SOON"
	// ExpiryStatusCritical covers 1-15 remaining days.
	ExpiryStatusCritical ExpiryStatus = "CRITICAL"
	// ExpiryStatusExpired covers zero or negative remaining days.
	ExpiryStatusExpired ExpiryStatus = "EXPIRED"
)

var validExpiryStatuses = []ExpiryStatus{
	ExpiryStatusExpiringSoon,
	ExpiryStatusCritical,
	ExpiryStatusExpired,
}

// String implements fmt.Stringer.
func (s ExpiryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ExpiryStatus.
func (s ExpiryStatus) IsValid() bool {
	for _, candidate := range validExpiryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseExpiryStatus converts raw input into an ExpiryStatus.
func ParseExpiryStatus(value string) (ExpiryStatus, error) {
	for _, candidate := range validExpiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expiry status %q", value)
}

// ExpiryStatusForDays bands remaining days into an ExpiryStatus.
func ExpiryStatusForDays(remaining int) ExpiryStatus {
	switch {
	case remaining <= 0:
		return ExpiryStatusExpired
	case remaining <= 15:
		return ExpiryStatusCritical
	default:
		return ExpiryStatusExpiringSoon
	}
}
