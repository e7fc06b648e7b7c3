// internal/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/i18n"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/services"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /applications/:id/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
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

	checkout, err := h.paymentService.CreateCheckout(c.Request.Context(), userID, appID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPaymentCheckoutCreated),
		"checkout": checkout,
	})
}

// POST /payments/webhook
// The gateway's server-to-server callback. Always answers 200: a retry can
// never do more than hit the idempotency ledger, and a non-200 only makes
// the gateway hammer us.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var callback services.GatewayCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		logrus.WithError(err).Warn("Undecodable gateway webhook")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.paymentService.HandleWebhook(&callback, c.Query("hmac")); err != nil {
		logrus.WithError(err).Error("Failed to process gateway webhook")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /payments/confirm
// Browser redirect target after hosted checkout. The authoritative state
// change happens on the webhook; this only tells the citizen what the
// gateway reported.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	success := c.Query("success") == "true"
	message := i18n.T(lang, i18n.KeyPaymentConfirmed)
	if !success {
		message = i18n.T(lang, i18n.KeyApplicationPaymentRejected)
	}

	utils.SuccessResponse(c, gin.H{
		"success": success,
		"message": message,
		"order":   c.Query("order"),
	})
}
