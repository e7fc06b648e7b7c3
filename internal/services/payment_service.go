// internal/services/payment_service.go
package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/database"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/i18n"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

// PaymentService bridges the portal to the hosted-checkout gateway. The
// gateway handshake is auth token, order registration, then a payment key
// that parameterizes the hosted iframe. Settlement arrives on the webhook.
type PaymentService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
	httpClient    *http.Client
}

type CheckoutResult struct {
	IframeURL   string  `json:"iframe_url"`
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	ExpiresInMn int     `json:"expires_in_minutes"`
}

// GatewayCallback is the webhook envelope. The HMAC covers the transaction
// object's fields in a fixed lexicographic order.
type GatewayCallback struct {
	Type string             `json:"type"`
	Obj  GatewayTransaction `json:"obj"`
}

type GatewayTransaction struct {
	ID                   int64  `json:"id"`
	AmountCents          int64  `json:"amount_cents"`
	CreatedAt            string `json:"created_at"`
	Currency             string `json:"currency"`
	ErrorOccured         bool   `json:"error_occured"`
	HasParentTransaction bool   `json:"has_parent_transaction"`
	IntegrationID        int64  `json:"integration_id"`
	Is3DSecure           bool   `json:"is_3d_secure"`
	IsAuth               bool   `json:"is_auth"`
	IsCapture            bool   `json:"is_capture"`
	IsRefunded           bool   `json:"is_refunded"`
	IsStandalonePayment  bool   `json:"is_standalone_payment"`
	IsVoided             bool   `json:"is_voided"`
	Order                struct {
		ID              int64  `json:"id"`
		MerchantOrderID string `json:"merchant_order_id"`
	} `json:"order"`
	Owner      int64 `json:"owner"`
	Pending    bool  `json:"pending"`
	SourceData struct {
		Pan     string `json:"pan"`
		SubType string `json:"sub_type"`
		Type    string `json:"type"`
	} `json:"source_data"`
	Success bool `json:"success"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *PaymentService {
	return &PaymentService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Gateway.TimeoutSec) * time.Second,
		},
	}
}

// CreateCheckout registers a gateway order for the stamped fee and returns
// the hosted iframe URL. Only the owner of an application awaiting payment
// can start a checkout; restarting replaces the stored order id, so only the
// latest order settles the application.
func (s *PaymentService) CreateCheckout(ctx context.Context, userID, appID uuid.UUID) (*CheckoutResult, error) {
	var app models.Application
	if err := s.db.Preload("User").First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("application not found")
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	if app.UserID != userID {
		return nil, errors.New("application not found")
	}
	if app.Status != models.StatusApprovedPaymentPending {
		return nil, errors.New("application is not awaiting payment")
	}
	if app.PaymentAmount == nil || *app.PaymentAmount <= 0 {
		return nil, errors.New("application has no stamped fee")
	}

	amountCents := int64(*app.PaymentAmount*100 + 0.5)

	token, err := s.authToken(ctx)
	if err != nil {
		return nil, err
	}

	merchantOrderID := fmt.Sprintf("BRDPAY-%s-%d", app.ID, time.Now().Unix())
	orderID, err := s.registerOrder(ctx, token, merchantOrderID, amountCents)
	if err != nil {
		return nil, err
	}

	paymentKey, err := s.paymentKey(ctx, token, orderID, amountCents, &app.User)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Application{}).
		Where("id = ?", app.ID).
		Update("gateway_order_id", strconv.FormatInt(orderID, 10)).Error; err != nil {
		return nil, fmt.Errorf("failed to store gateway order: %w", err)
	}

	return &CheckoutResult{
		IframeURL: fmt.Sprintf("%s/acceptance/iframes/%s?payment_token=%s",
			s.cfg.Gateway.BaseURL, s.cfg.Gateway.IframeID, paymentKey),
		OrderID:     strconv.FormatInt(orderID, 10),
		Amount:      *app.PaymentAmount,
		Currency:    s.cfg.Gateway.Currency,
		ExpiresInMn: 60,
	}, nil
}

// HandleWebhook processes a gateway callback. Bad signatures, unknown
// orders, and re-deliveries are swallowed without state change; the caller
// always answers 200 so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(callback *GatewayCallback, receivedHMAC string) error {
	txn := &callback.Obj
	txnID := strconv.FormatInt(txn.ID, 10)
	log := logrus.WithFields(logrus.Fields{
		"gateway_transaction_id": txnID,
		"gateway_order_id":       txn.Order.ID,
	})

	if !s.VerifyHMAC(txn, receivedHMAC) {
		log.Warn("Webhook signature mismatch, ignoring callback")
		return nil
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var existing models.ProcessedWebhook
		err := tx.Where("gateway_transaction_id = ?", txnID).First(&existing).Error
		if err == nil {
			log.Info("Webhook already processed, ignoring re-delivery")
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check webhook ledger: %w", err)
		}

		var app models.Application
		err = tx.Where("gateway_order_id = ?", strconv.FormatInt(txn.Order.ID, 10)).First(&app).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Webhook references unknown gateway order, recording and ignoring")
			return s.recordWebhook(tx, txn, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to look up application by gateway order: %w", err)
		}

		if err := s.recordWebhook(tx, txn, &app.ID); err != nil {
			return err
		}

		if !txn.Success {
			log.Info("Gateway reported failed payment")
			return s.notifications.Notify(tx, app.UserID, &app.ID, models.NotificationPaymentResult,
				app.ApplicationNumber, i18n.T(s.cfg.I18n.DefaultLocale, i18n.KeyApplicationPaymentRejected))
		}

		if app.PaymentAmount != nil {
			expectedCents := int64(*app.PaymentAmount*100 + 0.5)
			if txn.AmountCents != expectedCents {
				log.WithFields(logrus.Fields{
					"expected_cents": expectedCents,
					"paid_cents":     txn.AmountCents,
				}).Warn("Webhook amount mismatch, ignoring callback")
				return nil
			}
		}

		now := time.Now()
		err = applyTransition(tx, &app, EventGatewayConfirm, nil, "gateway transaction "+txnID,
			map[string]interface{}{
				"gateway_transaction_id": txnID,
				"verified_at":            &now,
			})
		if errors.Is(err, ErrInvalidTransition) {
			// Settled out of band (receipt path) before the webhook landed.
			log.Warn("Webhook arrived for application no longer awaiting payment")
			return nil
		}
		if err != nil {
			return err
		}

		return s.notifications.Notify(tx, app.UserID, &app.ID, models.NotificationPaymentResult,
			app.ApplicationNumber, i18n.T(s.cfg.I18n.DefaultLocale, i18n.KeyPaymentConfirmed))
	})
}

func (s *PaymentService) recordWebhook(tx *gorm.DB, txn *GatewayTransaction, appID *uuid.UUID) error {
	payload := models.JSONB{
		"id":                txn.ID,
		"order_id":          txn.Order.ID,
		"merchant_order_id": txn.Order.MerchantOrderID,
		"amount_cents":      txn.AmountCents,
		"currency":          txn.Currency,
		"success":           txn.Success,
		"pending":           txn.Pending,
		"source_type":       txn.SourceData.Type,
	}

	ledger := &models.ProcessedWebhook{
		GatewayTransactionID: strconv.FormatInt(txn.ID, 10),
		ApplicationID:        appID,
		Success:              txn.Success,
		Payload:              payload,
	}
	if err := tx.Create(ledger).Error; err != nil {
		return fmt.Errorf("failed to record webhook: %w", err)
	}

	return nil
}

// VerifyHMAC checks the gateway signature: HMAC-SHA512 over the transaction
// fields concatenated in the gateway's fixed field order.
func (s *PaymentService) VerifyHMAC(txn *GatewayTransaction, receivedHMAC string) bool {
	if s.cfg.Gateway.HMACSecret == "" || receivedHMAC == "" {
		return false
	}

	expected := s.computeHMAC(txn)
	return hmac.Equal([]byte(expected), []byte(receivedHMAC))
}

func (s *PaymentService) computeHMAC(txn *GatewayTransaction) string {
	concatenated := strconv.FormatInt(txn.AmountCents, 10) +
		txn.CreatedAt +
		txn.Currency +
		strconv.FormatBool(txn.ErrorOccured) +
		strconv.FormatBool(txn.HasParentTransaction) +
		strconv.FormatInt(txn.ID, 10) +
		strconv.FormatInt(txn.IntegrationID, 10) +
		strconv.FormatBool(txn.Is3DSecure) +
		strconv.FormatBool(txn.IsAuth) +
		strconv.FormatBool(txn.IsCapture) +
		strconv.FormatBool(txn.IsRefunded) +
		strconv.FormatBool(txn.IsStandalonePayment) +
		strconv.FormatBool(txn.IsVoided) +
		strconv.FormatInt(txn.Order.ID, 10) +
		strconv.FormatInt(txn.Owner, 10) +
		strconv.FormatBool(txn.Pending) +
		txn.SourceData.Pan +
		txn.SourceData.SubType +
		txn.SourceData.Type +
		strconv.FormatBool(txn.Success)

	mac := hmac.New(sha512.New, []byte(s.cfg.Gateway.HMACSecret))
	mac.Write([]byte(concatenated))
	return hex.EncodeToString(mac.Sum(nil))
}

// Gateway API calls.

func (s *PaymentService) authToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := s.postJSON(ctx, "/auth/tokens", map[string]interface{}{
		"api_key": s.cfg.Gateway.APIKey,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("gateway returned empty auth token")
	}
	return resp.Token, nil
}

func (s *PaymentService) registerOrder(ctx context.Context, token, merchantOrderID string, amountCents int64) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	err := s.postJSON(ctx, "/ecommerce/orders", map[string]interface{}{
		"auth_token":        token,
		"merchant_order_id": merchantOrderID,
		"amount_cents":      strconv.FormatInt(amountCents, 10),
		"currency":          s.cfg.Gateway.Currency,
		"delivery_needed":   false,
		"items":             []interface{}{},
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.ID == 0 {
		return 0, errors.New("gateway returned empty order id")
	}
	return resp.ID, nil
}

func (s *PaymentService) paymentKey(ctx context.Context, token string, orderID, amountCents int64, user *models.User) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := s.postJSON(ctx, "/acceptance/payment_keys", map[string]interface{}{
		"auth_token":     token,
		"order_id":       orderID,
		"amount_cents":   strconv.FormatInt(amountCents, 10),
		"currency":       s.cfg.Gateway.Currency,
		"integration_id": s.cfg.Gateway.IntegrationID,
		"expiration":     3600,
		"billing_data": map[string]interface{}{
			"first_name":   user.FullName,
			"last_name":    "NA",
			"email":        user.Email,
			"phone_number": user.Phone,
			"country":      "EG",
			"city":         "NA",
			"street":       "NA",
			"building":     "NA",
			"floor":        "NA",
			"apartment":    "NA",
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("gateway returned empty payment key")
	}
	return resp.Token, nil
}

func (s *PaymentService) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Gateway.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway request failed: %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
