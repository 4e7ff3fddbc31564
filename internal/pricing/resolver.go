package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
)

// ResolveInput carries everything the resolver needs; it performs no I/O so
// order pricing stays deterministic and unit-testable.
type ResolveInput struct {
	Quantity  int
	FlatPrice *models.VariantPrice
	BulkTiers []models.BulkPrice
}

// Quote is the resolved per-unit pricing plus the rounded line total.
type Quote struct {
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	GSTPct      decimal.Decimal
	// UnitNet is the unit price after discount and GST, rounded.
	UnitNet   decimal.Decimal
	LineTotal decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Resolve picks the bulk tier with the largest max_quantity not exceeding the
// requested quantity, falling back to the role flat price. The discount and
// GST amounts are each rounded half-up to 2 decimal places before being
// applied, as is the final line total.
func Resolve(in ResolveInput) (*Quote, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}

	var (
		unit, discount, gst decimal.Decimal
		found               bool
	)

	bestMax := 0
	for _, tier := range in.BulkTiers {
		if tier.MaxQuantity <= in.Quantity && tier.MaxQuantity > bestMax {
			bestMax = tier.MaxQuantity
			unit, discount, gst = tier.Price, tier.DiscountPct, tier.GSTPct
			found = true
		}
	}

	if !found {
		if in.FlatPrice == nil {
			return nil, apperrors.New(apperrors.CodeValidation, "no pricing configured for variant")
		}
		unit, discount, gst = in.FlatPrice.Price, in.FlatPrice.DiscountPct, in.FlatPrice.GSTPct
	}

	discountAmount := unit.Mul(discount).Div(oneHundred).Round(2)
	afterDiscount := unit.Sub(discountAmount)
	gstAmount := afterDiscount.Mul(gst).Div(oneHundred).Round(2)
	unitNet := afterDiscount.Add(gstAmount)
	total := unitNet.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2)

	return &Quote{
		UnitPrice:   unit,
		DiscountPct: discount,
		GSTPct:      gst,
		UnitNet:     unitNet,
		LineTotal:   total,
	}, nil
}
