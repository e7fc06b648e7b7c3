// internal/services/lookup_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/cache"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

// LookupService serves the small reference tables the public portal renders:
// status metadata, license categories, and required-document lists.
type LookupService struct {
	db    *gorm.DB
	cache *cache.Client
}

func NewLookupService(db *gorm.DB, cacheClient *cache.Client) *LookupService {
	return &LookupService{
		db:    db,
		cache: cacheClient,
	}
}

func (s *LookupService) GetStatuses(ctx context.Context) ([]models.ApplicationStatusRef, error) {
	var statuses []models.ApplicationStatusRef
	if s.cache.GetJSON(ctx, cache.KeyStatuses, &statuses) {
		return statuses, nil
	}

	if err := s.db.Order("sort_order ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch statuses: %w", err)
	}

	s.cache.SetJSON(ctx, cache.KeyStatuses, statuses)
	return statuses, nil
}

func (s *LookupService) GetCategories() map[models.ApplicationType][]string {
	return models.LicenseCategories
}

func (s *LookupService) GetRequiredDocuments(ctx context.Context) ([]models.ServiceRequiredDocument, error) {
	var docs []models.ServiceRequiredDocument
	if s.cache.GetJSON(ctx, cache.KeyRequiredDocs, &docs) {
		return docs, nil
	}

	if err := s.db.Order("application_type ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch required documents: %w", err)
	}

	s.cache.SetJSON(ctx, cache.KeyRequiredDocs, docs)
	return docs, nil
}
