package enums

import "fmt"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeOrder    NotificationType = "order"
	NotificationTypeWallet   NotificationType = "wallet"
	NotificationTypeTransfer NotificationType = "stock_transfer"
	NotificationTypeExpiry   NotificationType = "expiry"
	NotificationTypeSystem   NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypeWallet,
	NotificationTypeTransfer,
	NotificationTypeExpiry,
	NotificationTypeSystem,
}

// String implements fmt.Stringer.
func (t NotificationType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known NotificationType.
func (t NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
