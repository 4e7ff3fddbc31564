package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/repo"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
)

// Service is the read side of the product catalog. Catalog CRUD lives in a
// separate system; order pricing only needs lookups.
type Service interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	// GetVariant returns the variant and its parent product, rejecting
	// inactive rows.
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, *models.Product, error)
	GetRoleFlatPrice(ctx context.Context, variantID, sellerID uuid.UUID, role enums.Role) (*models.VariantPrice, error)
	GetBulkTiers(ctx context.Context, variantID uuid.UUID) ([]models.BulkPrice, error)
}

type service struct {
	base repo.Base
}

// NewService wires a catalog read service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{base: repo.NewBase(db)}, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}

	var product models.Product
	if err := s.base.DB(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.New(apperrors.CodeValidation, "product is inactive")
	}
	return &product, nil
}

func (s *service) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, *models.Product, error) {
	if variantID == uuid.Nil {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "variant id is required")
	}

	var variant models.ProductVariant
	if err := s.base.DB(ctx).First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.New(apperrors.CodeNotFound, "variant not found")
		}
		return nil, nil, err
	}
	if !variant.IsActive {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "variant is inactive")
	}

	product, err := s.GetProduct(ctx, variant.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return &variant, product, nil
}

func (s *service) GetRoleFlatPrice(ctx context.Context, variantID, sellerID uuid.UUID, role enums.Role) (*models.VariantPrice, error) {
	var price models.VariantPrice
	err := s.base.DB(ctx).
		Where("variant_id = ? AND seller_id = ? AND role = ?", variantID, sellerID, role).
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (s *service) GetBulkTiers(ctx context.Context, variantID uuid.UUID) ([]models.BulkPrice, error) {
	var tiers []models.BulkPrice
	if err := s.base.DB(ctx).
		Where("variant_id = ?", variantID).
		Order("max_quantity ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}
