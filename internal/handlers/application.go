// internal/handlers/application.go
package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/i18n"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/services"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	storageService     *services.StorageService
}

func NewApplicationHandler(applicationService *services.ApplicationService, storageService *services.StorageService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		storageService:     storageService,
	}
}

// POST /applications
// Multipart: a "payload" JSON part plus one file part per document, keyed by
// document type.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.SubmitApplicationRequest
	if err := json.Unmarshal([]byte(c.PostForm("payload")), &req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	options := h.storageService.GetDefaultUploadOptions("documents")
	var docs []services.DocumentInput
	for field, headers := range form.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
				return
			}

			result, err := h.storageService.UploadFile(file, header, options)
			file.Close()
			if err != nil {
				utils.BadRequestResponse(c, err.Error(), nil)
				return
			}

			docs = append(docs, services.DocumentInput{
				DocType:  models.DocumentType(field),
				FileName: header.Filename,
				Key:      result.Key,
				URL:      result.URL,
				Size:     result.Size,
				MimeType: result.MimeType,
			})
		}
	}

	app, err := h.applicationService.Submit(userID, &req, docs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationCreated),
		"application": app,
	})
}

// GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filters := services.ApplicationFilters{
		Status:          models.ApplicationStatus(c.Query("status")),
		ApplicationType: models.ApplicationType(c.Query("type")),
	}

	result, err := h.applicationService.ListForUser(userID, params, filters)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	isStaff := role != string(models.RoleCitizen) && role != ""

	app, err := h.applicationService.GetByID(appID, userID, isStaff)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": app})
}

// GET /applications/:id/history
func (h *ApplicationHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	isStaff := role != string(models.RoleCitizen) && role != ""

	history, err := h.applicationService.History(appID, userID, isStaff)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"history": history})
}

// POST /applications/:id/documents
// Multipart: a "doc_type" field plus a single "file" part.
func (h *ApplicationHandler) AddDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}

	docType := models.DocumentType(c.PostForm("doc_type"))
	if docType == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), "doc_type is required")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("documents"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	doc, err := h.applicationService.AddDocument(userID, appID, services.DocumentInput{
		DocType:  docType,
		FileName: header.Filename,
		Key:      result.Key,
		URL:      result.URL,
		Size:     result.Size,
		MimeType: result.MimeType,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentUploaded),
		"document": doc,
	})
}

// GET /applications/:id/documents/:docId
// Returns a short-lived download URL for the stored file.
func (h *ApplicationHandler) DownloadDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}
	docID, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid document id", nil)
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	isStaff := role != string(models.RoleCitizen) && role != ""

	doc, err := h.applicationService.GetDocument(appID, docID, userID, isStaff)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	url, err := h.storageService.GeneratePresignedURL(doc.StorageKey, 15*time.Minute)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"url":                url,
		"file_name":          doc.FileName,
		"expires_in_seconds": 900,
	})
}

// DELETE /applications/:id/documents/:docId
func (h *ApplicationHandler) DeleteDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}
	docID, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid document id", nil)
		return
	}

	doc, err := h.applicationService.DeleteDocument(userID, appID, docID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.storageService.DeleteFile(doc.StorageKey); err != nil {
		logrus.WithError(err).WithField("key", doc.StorageKey).Warn("Failed to delete stored document file")
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyDocumentDeleted)})
}

// POST /applications/:id/cancel
func (h *ApplicationHandler) Cancel(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}

	app, err := h.applicationService.Cancel(userID, appID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationCancelled),
		"application": app,
	})
}

// POST /applications/:id/receipt
// Multipart with a single "receipt" file part.
func (h *ApplicationHandler) SubmitReceipt(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid application id", nil)
		return
	}

	header, err := c.FormFile("receipt")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("receipts"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	app, err := h.applicationService.SubmitReceipt(userID, appID, result)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationReceiptSubmitted),
		"application": app,
	})
}

// respondServiceError maps the service layer's domain errors onto HTTP
// statuses the same way across handlers.
func respondServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrInvalidTransition):
		utils.UnprocessableResponse(c, i18n.T(lang, i18n.KeyApplicationInvalidStatus))
	case strings.Contains(err.Error(), "price not found"):
		utils.UnprocessableResponse(c, i18n.T(lang, i18n.KeyPriceNotFound))
	case strings.Contains(err.Error(), "document not found"):
		utils.NotFoundResponse(c, i18n.KeyDocumentNotFound)
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, i18n.KeyApplicationNotFound)
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, "")
	case strings.Contains(err.Error(), "gateway"):
		utils.BadGatewayResponse(c, "")
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
