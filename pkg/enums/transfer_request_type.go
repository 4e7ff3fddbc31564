package enums

import "fmt"

// TransferRequestType captures why stock is being sent back.
type TransferRequestType string

const (
	TransferRequestTypeExpired      TransferRequestType = "EXPIRED"
	TransferRequestTypeDamaged      TransferRequestType = "DAMAGED"
	TransferRequestTypeWrongProduct TransferRequestType = "WRONG_PRODUCT"
	TransferRequestTypeDefective    TransferRequestType = "DEFECTIVE"
	TransferRequestTypeOther        TransferRequestType = "OTHER"
)

var validTransferRequestTypes = []TransferRequestType{
	TransferRequestTypeExpired,
	TransferRequestTypeDamaged,
	TransferRequestTypeWrongProduct,
	TransferRequestTypeDefective,
	TransferRequestTypeOther,
}

// String implements fmt.Stringer.
func (t TransferRequestType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferRequestType.
func (t TransferRequestType) IsValid() bool {
	for _, candidate := range validTransferRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferRequestType converts raw input into a TransferRequestType.
func ParseTransferRequestType(value string) (TransferRequestType, error) {
	for _, candidate := range validTransferRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer request type %q", value)
}
