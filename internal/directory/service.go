package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/repo"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
)

// Service is the user directory read side used for seller resolution.
type Service interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// GetStockistAssignment returns nil when the reseller has no assignment.
	GetStockistAssignment(ctx context.Context, resellerID uuid.UUID) (*models.StockistAssignment, error)
	// GetDefaultStockist picks the oldest active user flagged default, so
	// repeated calls always resolve the same stockist.
	GetDefaultStockist(ctx context.Context) (*models.User, error)
}

type service struct {
	base repo.Base
}

// NewService wires a directory read service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{base: repo.NewBase(db)}, nil
}

func (s *service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}

	var user models.User
	if err := s.base.DB(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeValidation, "user is inactive")
	}
	return &user, nil
}

func (s *service) GetStockistAssignment(ctx context.Context, resellerID uuid.UUID) (*models.StockistAssignment, error) {
	if resellerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "reseller id is required")
	}

	var assignment models.StockistAssignment
	err := s.base.DB(ctx).
		Where("reseller_id = ?", resellerID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *service) GetDefaultStockist(ctx context.Context) (*models.User, error) {
	var user models.User
	err := s.base.DB(ctx).
		Where("is_default_stockist = ? AND is_active = ?", true, true).
		Order("created_at ASC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeDependency, "no default stockist configured")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
