// internal/services/pricing_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/cache"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

// PricingService owns the versioned fee table. Fees are resolved at approval
// time and stamped onto the application; later price changes never touch an
// already-stamped fee.
type PricingService struct {
	db    *gorm.DB
	cache *cache.Client
}

type PriceRequest struct {
	ApplicationType models.ApplicationType `json:"application_type" validate:"required"`
	Category        string                 `json:"category" validate:"required"`
	IsRenewal       bool                   `json:"is_renewal"`
	DurationMonths  int                    `json:"duration_months" validate:"required,min=1,max=120"`
	BoatType        string                 `json:"boat_type,omitempty"`
	Amount          float64                `json:"amount" validate:"required,gt=0"`
	Currency        string                 `json:"currency,omitempty"`
	EffectiveFrom   *time.Time             `json:"effective_from,omitempty"`
	EffectiveTo     *time.Time             `json:"effective_to,omitempty"`
}

func NewPricingService(db *gorm.DB, cacheClient *cache.Client) *PricingService {
	return &PricingService{
		db:    db,
		cache: cacheClient,
	}
}

// ResolveFee picks the price row in effect at the given instant. Rows with an
// exact boat type match win over wildcard rows; among equals the latest
// effective_from wins.
func (s *PricingService) ResolveFee(tx *gorm.DB, app *models.Application, at time.Time) (*models.LicensePrice, error) {
	if tx == nil {
		tx = s.db
	}

	var price models.LicensePrice
	err := tx.Where("application_type = ? AND category = ? AND is_renewal = ? AND duration_months = ?",
		app.ApplicationType, app.LicenseCategory, app.IsRenewal, app.DurationMonths).
		Where("boat_type = ? OR boat_type = ''", app.BoatType).
		Where("is_active = ?", true).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at).
		Order("boat_type DESC, effective_from DESC").
		Limit(1).
		First(&price).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("price not found")
		}
		return nil, fmt.Errorf("failed to resolve price: %w", err)
	}

	return &price, nil
}

// ListCurrent returns the price rows in effect now, for the public fee page.
func (s *PricingService) ListCurrent(ctx context.Context) ([]models.LicensePrice, error) {
	var prices []models.LicensePrice
	if s.cache.GetJSON(ctx, cache.KeyPrices, &prices) {
		return prices, nil
	}

	now := time.Now()
	err := s.db.Where("is_active = ?", true).
		Where("effective_from <= ?", now).
		Where("effective_to IS NULL OR effective_to > ?", now).
		Order("application_type, category, duration_months").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	s.cache.SetJSON(ctx, cache.KeyPrices, prices)
	return prices, nil
}

func (s *PricingService) List(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.LicensePrice{})
	if params.Search != "" {
		query = query.Where("category LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count prices: %w", err)
	}

	var prices []models.LicensePrice
	query = utils.ApplySort(query, params, []string{"created_at", "effective_from", "amount"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	result := utils.CreatePaginationResult(prices, total, params)
	return &result, nil
}

func (s *PricingService) Create(req *PriceRequest, createdBy uuid.UUID) (*models.LicensePrice, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !models.IsValidCategory(req.ApplicationType, req.Category) {
		return nil, errors.New("invalid license category")
	}

	effectiveFrom := time.Now()
	if req.EffectiveFrom != nil {
		effectiveFrom = *req.EffectiveFrom
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.After(effectiveFrom) {
		return nil, errors.New("effective_to must be after effective_from")
	}

	currency := req.Currency
	if currency == "" {
		currency = "EGP"
	}

	price := &models.LicensePrice{
		ApplicationType: req.ApplicationType,
		Category:        req.Category,
		IsRenewal:       req.IsRenewal,
		DurationMonths:  req.DurationMonths,
		BoatType:        req.BoatType,
		Amount:          req.Amount,
		Currency:        currency,
		EffectiveFrom:   effectiveFrom,
		EffectiveTo:     req.EffectiveTo,
		IsActive:        true,
		CreatedBy:       createdBy,
	}

	if err := s.db.Create(price).Error; err != nil {
		return nil, fmt.Errorf("failed to create price: %w", err)
	}

	s.cache.Invalidate(context.Background(), cache.KeyPrices)
	return price, nil
}

// Close ends a price row's effective window. The row itself is immutable
// after creation; superseding a fee means closing the old row and creating a
// new one.
func (s *PricingService) Close(priceID uuid.UUID, at *time.Time) (*models.LicensePrice, error) {
	var price models.LicensePrice
	if err := s.db.First(&price, priceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("price not found")
		}
		return nil, fmt.Errorf("failed to fetch price: %w", err)
	}

	closeAt := time.Now()
	if at != nil {
		closeAt = *at
	}
	price.EffectiveTo = &closeAt
	price.IsActive = false

	if err := s.db.Save(&price).Error; err != nil {
		return nil, fmt.Errorf("failed to close price: %w", err)
	}

	s.cache.Invalidate(context.Background(), cache.KeyPrices)
	return &price, nil
}
