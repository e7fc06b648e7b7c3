// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/i18n"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/services"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

// AdminHandler carries the back-office surface: the review workflow, payment
// verification, the fee table, user management, and news publishing.
type AdminHandler struct {
	adminService       *services.AdminService
	applicationService *services.ApplicationService
	pricingService     *services.PricingService
	newsService        *services.NewsService
}

func NewAdminHandler(adminService *services.AdminService, applicationService *services.ApplicationService, pricingService *services.PricingService, newsService *services.NewsService) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		applicationService: applicationService,
		pricingService:     pricingService,
		newsService:        newsService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboard()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/applications
func (h *AdminHandler) ListApplications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filters := services.ApplicationFilters{
		Status:          models.ApplicationStatus(c.Query("status")),
		ApplicationType: models.ApplicationType(c.Query("type")),
	}

	result, err := h.applicationService.ListAll(params, filters)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/applications/:id/start-review
func (h *AdminHandler) StartReview(c *gin.Context) {
	h.runTransition(c, i18n.KeyApplicationReviewStarted, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.StartReview(actorID, appID)
	})
}

// POST /admin/applications/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	h.runTransition(c, i18n.KeyApplicationApproved, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.Approve(actorID, appID)
	})
}

// POST /admin/applications/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)

	h.runTransition(c, i18n.KeyApplicationRejected, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.Reject(actorID, appID, req.Reason)
	})
}

// POST /admin/applications/:id/verify-payment
func (h *AdminHandler) VerifyPayment(c *gin.Context) {
	var req struct {
		Note string `json:"note"`
	}
	c.ShouldBindJSON(&req)

	h.runTransition(c, i18n.KeyApplicationPaymentVerified, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.VerifyPayment(actorID, appID, req.Note)
	})
}

// POST /admin/applications/:id/reject-payment
func (h *AdminHandler) RejectPayment(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)

	h.runTransition(c, i18n.KeyApplicationPaymentRejected, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.RejectPayment(actorID, appID, req.Reason)
	})
}

// POST /admin/applications/:id/mark-ready
func (h *AdminHandler) MarkReady(c *gin.Context) {
	h.runTransition(c, i18n.KeyApplicationReady, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.MarkReady(actorID, appID)
	})
}

// POST /admin/applications/:id/complete
func (h *AdminHandler) Complete(c *gin.Context) {
	h.runTransition(c, i18n.KeyApplicationCompleted, func(actorID, appID uuid.UUID) (*models.Application, error) {
		return h.applicationService.Complete(actorID, appID)
	})
}

func (h *AdminHandler) runTransition(c *gin.Context, messageKey string, fn func(actorID, appID uuid.UUID) (*models.Application, error)) {
	lang := utils.GetLangFromContext(c)

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}

	app, err := fn(actorID, appID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, messageKey),
		"application": app,
	})
}

// User management (super admin).

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	role := models.UserRole(c.Query("role"))

	result, err := h.adminService.ListUsers(params, role)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid user id", nil)
		return
	}

	user, err := h.adminService.GetUser(userID)
	if err != nil {
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid user id", nil)
		return
	}

	var req services.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	user, err := h.adminService.UpdateUserRole(actorID, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserRoleUpdated),
		"user":    user,
	})
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid user id", nil)
		return
	}

	var req services.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	user, err := h.adminService.UpdateUserStatus(actorID, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserStatusUpdated),
		"user":    user,
	})
}

// GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.adminService.ListAuditLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// Fee table (financial officer / super admin).

// GET /admin/prices
func (h *AdminHandler) ListPrices(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.pricingService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/prices
func (h *AdminHandler) CreatePrice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	price, err := h.pricingService.Create(&req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPriceCreated),
		"price":   price,
	})
}

// POST /admin/prices/:id/close
func (h *AdminHandler) ClosePrice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	priceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid price id", nil)
		return
	}

	price, err := h.pricingService.Close(priceID, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPriceUpdated),
		"price":   price,
	})
}

// News publishing (admin).

// POST /admin/news
func (h *AdminHandler) CreateNews(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	item, err := h.newsService.Create(&req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"news": item})
}

// GET /admin/news
func (h *AdminHandler) ListNews(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.newsService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// PUT /admin/news/:id
func (h *AdminHandler) UpdateNews(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	newsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid news id", nil)
		return
	}

	var req services.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	item, err := h.newsService.Update(newsID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"news": item})
}

// DELETE /admin/news/:id
func (h *AdminHandler) DeleteNews(c *gin.Context) {
	newsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid news id", nil)
		return
	}

	if err := h.newsService.Delete(newsID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
