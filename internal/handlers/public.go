// internal/handlers/public.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/i18n"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/services"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

// PublicHandler serves the anonymous portal pages: reference lookups, the fee
// table, and published news.
type PublicHandler struct {
	lookupService  *services.LookupService
	pricingService *services.PricingService
	newsService    *services.NewsService
}

func NewPublicHandler(lookupService *services.LookupService, pricingService *services.PricingService, newsService *services.NewsService) *PublicHandler {
	return &PublicHandler{
		lookupService:  lookupService,
		pricingService: pricingService,
		newsService:    newsService,
	}
}

// GET /lookups/statuses
func (h *PublicHandler) Statuses(c *gin.Context) {
	statuses, err := h.lookupService.GetStatuses(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"statuses": statuses})
}

// GET /lookups/categories
func (h *PublicHandler) Categories(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"categories": h.lookupService.GetCategories()})
}

// GET /lookups/required-documents
func (h *PublicHandler) RequiredDocuments(c *gin.Context) {
	docs, err := h.lookupService.GetRequiredDocuments(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"required_documents": docs})
}

// GET /prices
func (h *PublicHandler) Prices(c *gin.Context) {
	prices, err := h.pricingService.ListCurrent(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"prices": prices})
}

// GET /news
func (h *PublicHandler) News(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.newsService.ListPublished(c.Request.Context(), limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"news": items})
}

// GET /news/:id
func (h *PublicHandler) NewsItem(c *gin.Context) {
	newsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid news id", nil)
		return
	}

	item, err := h.newsService.GetByID(newsID)
	if err != nil || !item.IsPublished {
		utils.NotFoundResponse(c, i18n.KeyNewsNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"news": item})
}
