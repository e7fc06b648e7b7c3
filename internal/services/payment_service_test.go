// internal/services/payment_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

type PaymentServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *PaymentService
	citizen *models.User
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testConfig()
	s.svc = NewPaymentService(s.db, cfg, NewNotificationService(s.db, cfg))
	s.citizen = createTestUser(s.T(), s.db, "payer@example.com", models.RoleCitizen)
}

// awaitingPayment inserts an application already approved with a stamped fee
// and a registered gateway order.
func (s *PaymentServiceSuite) awaitingPayment(orderID string, amount float64) *models.Application {
	app := &models.Application{
		ApplicationNumber: "BRD-2026-9001",
		ApplicationType:   models.ApplicationTypeFisherman,
		LicenseCategory:   "صياد مؤمن عليه",
		DurationMonths:    12,
		Status:            models.StatusApprovedPaymentPending,
		PaymentAmount:     &amount,
		PaymentReference:  "BRD-TESTREF001",
		GatewayOrderID:    orderID,
		UserID:            s.citizen.ID,
	}
	s.Require().NoError(s.db.Create(app).Error)
	return app
}

func (s *PaymentServiceSuite) signedCallback(orderID int64, amountCents int64, success bool) (*GatewayCallback, string) {
	cb := &GatewayCallback{
		Type: "TRANSACTION",
		Obj: GatewayTransaction{
			ID:            7001,
			AmountCents:   amountCents,
			CreatedAt:     time.Now().Format(time.RFC3339),
			Currency:      "EGP",
			IntegrationID: 42,
			Owner:         9,
			Success:       success,
		},
	}
	cb.Obj.Order.ID = orderID
	cb.Obj.SourceData.Pan = "2346"
	cb.Obj.SourceData.SubType = "MasterCard"
	cb.Obj.SourceData.Type = "card"

	return cb, s.svc.computeHMAC(&cb.Obj)
}

func (s *PaymentServiceSuite) ledgerCount() int64 {
	var count int64
	s.db.Model(&models.ProcessedWebhook{}).Count(&count)
	return count
}

func (s *PaymentServiceSuite) TestVerifyHMAC() {
	cb, sig := s.signedCallback(555, 35000, true)

	s.True(s.svc.VerifyHMAC(&cb.Obj, sig))

	cb.Obj.AmountCents = 1 // tampered
	s.False(s.svc.VerifyHMAC(&cb.Obj, sig))

	s.False(s.svc.VerifyHMAC(&cb.Obj, ""))
}

func (s *PaymentServiceSuite) TestWebhookBadSignatureIgnored() {
	app := s.awaitingPayment("555", 350)
	cb, _ := s.signedCallback(555, 35000, true)

	s.Require().NoError(s.svc.HandleWebhook(cb, "deadbeef"))

	s.Equal(int64(0), s.ledgerCount())
	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusApprovedPaymentPending, reloaded.Status)
}

func (s *PaymentServiceSuite) TestWebhookCompletesApplication() {
	app := s.awaitingPayment("555", 350)
	cb, sig := s.signedCallback(555, 35000, true)

	s.Require().NoError(s.svc.HandleWebhook(cb, sig))

	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusCompleted, reloaded.Status)
	s.Equal("7001", reloaded.GatewayTransactionID)
	s.NotNil(reloaded.VerifiedAt)

	s.Equal(int64(1), s.ledgerCount())

	var historyCount int64
	s.db.Model(&models.ApplicationStatusHistory{}).Where("application_id = ?", app.ID).Count(&historyCount)
	s.Equal(int64(1), historyCount)

	var noteCount int64
	s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", s.citizen.ID, models.NotificationPaymentResult).
		Count(&noteCount)
	s.Equal(int64(1), noteCount)
}

func (s *PaymentServiceSuite) TestWebhookDuplicateDelivery() {
	app := s.awaitingPayment("555", 350)
	cb, sig := s.signedCallback(555, 35000, true)

	s.Require().NoError(s.svc.HandleWebhook(cb, sig))
	s.Require().NoError(s.svc.HandleWebhook(cb, sig))

	s.Equal(int64(1), s.ledgerCount())

	var historyCount int64
	s.db.Model(&models.ApplicationStatusHistory{}).Where("application_id = ?", app.ID).Count(&historyCount)
	s.Equal(int64(1), historyCount)
}

func (s *PaymentServiceSuite) TestWebhookUnknownOrderRecordedOnly() {
	cb, sig := s.signedCallback(40404, 35000, true)

	s.Require().NoError(s.svc.HandleWebhook(cb, sig))

	var ledger models.ProcessedWebhook
	s.Require().NoError(s.db.First(&ledger).Error)
	s.Equal("7001", ledger.GatewayTransactionID)
	s.Nil(ledger.ApplicationID)
}

func (s *PaymentServiceSuite) TestWebhookAmountMismatchIgnored() {
	app := s.awaitingPayment("555", 350)
	cb, sig := s.signedCallback(555, 12345, true) // expected 35000

	s.Require().NoError(s.svc.HandleWebhook(cb, sig))

	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusApprovedPaymentPending, reloaded.Status)

	// Delivery is still recorded so a retry will not reprocess it.
	s.Equal(int64(1), s.ledgerCount())
}

func (s *PaymentServiceSuite) TestWebhookFailedPayment() {
	app := s.awaitingPayment("555", 350)
	cb, sig := s.signedCallback(555, 35000, false)

	s.Require().NoError(s.svc.HandleWebhook(cb, sig))

	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusApprovedPaymentPending, reloaded.Status)

	var noteCount int64
	s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", s.citizen.ID, models.NotificationPaymentResult).
		Count(&noteCount)
	s.Equal(int64(1), noteCount)
}

func (s *PaymentServiceSuite) TestWebhookAfterReceiptSettlement() {
	// Receipt path settled the application before the webhook landed.
	app := s.awaitingPayment("555", 350)
	s.Require().NoError(s.db.Model(app).Update("status", models.StatusPaymentSubmitted).Error)

	cb, sig := s.signedCallback(555, 35000, true)
	s.Require().NoError(s.svc.HandleWebhook(cb, sig))

	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusPaymentSubmitted, reloaded.Status)
	s.Equal(int64(1), s.ledgerCount())
}

func (s *PaymentServiceSuite) TestCreateCheckoutGuards() {
	app := s.awaitingPayment("", 350)
	other := createTestUser(s.T(), s.db, "someone@example.com", models.RoleCitizen)

	_, err := s.svc.CreateCheckout(context.Background(), other.ID, app.ID)
	s.Require().ErrorContains(err, "application not found")

	s.Require().NoError(s.db.Model(app).Update("status", models.StatusReceived).Error)
	_, err = s.svc.CreateCheckout(context.Background(), s.citizen.ID, app.ID)
	s.Require().ErrorContains(err, "not awaiting payment")
}
