// internal/services/news_service.go
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

type NewsService struct {
	db    *gorm.DB
	cache *cache.Client
}

type NewsRequest struct {
	TitleAr  string `json:"title_ar" validate:"required,max=255"`
	TitleEn  string `json:"title_en,omitempty" validate:"omitempty,max=255"`
	BodyAr   string `json:"body_ar" validate:"required"`
	BodyEn   string `json:"body_en,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Publish  bool   `json:"publish"`
}

func NewNewsService(db *gorm.DB, cacheClient *cache.Client) *NewsService {
	return &NewsService{
		db:    db,
		cache: cacheClient,
	}
}

// ListPublished feeds the portal landing page; cached because it is the
// hottest anonymous read.
func (s *NewsService) ListPublished(ctx context.Context, limit int) ([]models.News, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var items []models.News
	if s.cache.GetJSON(ctx, cache.KeyNews, &items) && len(items) >= limit {
		return items[:limit], nil
	}

	err := s.db.Where("is_published = ?", true).
		Order("published_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	s.cache.SetJSON(ctx, cache.KeyNews, items)
	return items, nil
}

func (s *NewsService) List(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.News{})
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("title_ar LIKE ? OR title_en LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count news: %w", err)
	}

	var items []models.News
	query = utils.ApplySort(query, params, []string{"created_at", "published_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	result := utils.CreatePaginationResult(items, total, params)
	return &result, nil
}

func (s *NewsService) GetByID(newsID uuid.UUID) (*models.News, error) {
	var item models.News
	if err := s.db.First(&item, newsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("news not found")
		}
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	return &item, nil
}

func (s *NewsService) Create(req *NewsRequest, createdBy uuid.UUID) (*models.News, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	item := &models.News{
		TitleAr:     req.TitleAr,
		TitleEn:     req.TitleEn,
		BodyAr:      req.BodyAr,
		BodyEn:      req.BodyEn,
		ImageURL:    req.ImageURL,
		IsPublished: req.Publish,
		CreatedBy:   createdBy,
	}
	if req.Publish {
		now := time.Now()
		item.PublishedAt = &now
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}

	s.cache.Invalidate(context.Background(), cache.KeyNews)
	return item, nil
}

func (s *NewsService) Update(newsID uuid.UUID, req *NewsRequest) (*models.News, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	item, err := s.GetByID(newsID)
	if err != nil {
		return nil, err
	}

	item.TitleAr = req.TitleAr
	item.TitleEn = req.TitleEn
	item.BodyAr = req.BodyAr
	item.BodyEn = req.BodyEn
	item.ImageURL = req.ImageURL

	if req.Publish && !item.IsPublished {
		now := time.Now()
		item.PublishedAt = &now
	}
	item.IsPublished = req.Publish

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update news: %w", err)
	}

	s.cache.Invalidate(context.Background(), cache.KeyNews)
	return item, nil
}

func (s *NewsService) Delete(newsID uuid.UUID) error {
	result := s.db.Delete(&models.News{}, newsID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete news: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("news not found")
	}

	s.cache.Invalidate(context.Background(), cache.KeyNews)
	return nil
}
