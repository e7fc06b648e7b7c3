// internal/services/application_service_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

type ApplicationServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *ApplicationService
	pricing *PricingService
	citizen *models.User
	admin   *models.User
	finance *models.User
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testConfig()

	notifications := NewNotificationService(s.db, cfg)
	s.pricing = NewPricingService(s.db, nil)
	s.svc = NewApplicationService(s.db, cfg, s.pricing, notifications)

	s.citizen = createTestUser(s.T(), s.db, "citizen@example.com", models.RoleCitizen)
	s.admin = createTestUser(s.T(), s.db, "admin@example.com", models.RoleAdmin)
	s.finance = createTestUser(s.T(), s.db, "finance@example.com", models.RoleFinancialOfficer)
}

func fishermanRequest() *SubmitApplicationRequest {
	return &SubmitApplicationRequest{
		ApplicationType: models.ApplicationTypeFisherman,
		LicenseCategory: "صياد مؤمن عليه",
		DurationMonths:  12,
		Data: models.JSONB{
			"fishing_card_number": "FC-1234",
			"marina":              "مرسى التلول",
		},
	}
}

func fishermanDocs() []DocumentInput {
	docs := []DocumentInput{}
	for _, dt := range []models.DocumentType{
		models.DocumentNationalIDCopy,
		models.DocumentPersonalPhoto,
		models.DocumentFishingCard,
	} {
		docs = append(docs, DocumentInput{
			DocType:  dt,
			FileName: string(dt) + ".pdf",
			Key:      "documents/" + string(dt) + ".pdf",
			Size:     1024,
			MimeType: "application/pdf",
		})
	}
	return docs
}

func (s *ApplicationServiceSuite) seedFishermanPrice(amount float64) {
	s.Require().NoError(s.db.Create(&models.LicensePrice{
		ApplicationType: models.ApplicationTypeFisherman,
		Category:        "صياد مؤمن عليه",
		DurationMonths:  12,
		Amount:          amount,
		Currency:        "EGP",
		EffectiveFrom:   time.Now().Add(-24 * time.Hour),
		IsActive:        true,
		CreatedBy:       s.finance.ID,
	}).Error)
}

func (s *ApplicationServiceSuite) submit() *models.Application {
	app, err := s.svc.Submit(s.citizen.ID, fishermanRequest(), fishermanDocs())
	s.Require().NoError(err)
	return app
}

func (s *ApplicationServiceSuite) TestSubmitRejectsUnknownCategory() {
	req := fishermanRequest()
	req.LicenseCategory = "not a real category"

	_, err := s.svc.Submit(s.citizen.ID, req, fishermanDocs())
	s.Require().ErrorContains(err, "invalid license category")
}

func (s *ApplicationServiceSuite) TestSubmitRequiresBoatType() {
	req := &SubmitApplicationRequest{
		ApplicationType: models.ApplicationTypeBoat,
		LicenseCategory: "مركب بمحرك",
		DurationMonths:  12,
		Data: models.JSONB{
			"boat_name":           "النورس",
			"registration_number": "BR-99",
			"marina":              "مرسى التلول",
		},
	}

	_, err := s.svc.Submit(s.citizen.ID, req, nil)
	s.Require().ErrorContains(err, "boat type is required")
}

func (s *ApplicationServiceSuite) TestSubmitRequiresDocuments() {
	docs := fishermanDocs()[:1] // national id copy only

	_, err := s.svc.Submit(s.citizen.ID, fishermanRequest(), docs)
	s.Require().ErrorContains(err, "required documents missing")
	s.Require().ErrorContains(err, string(models.DocumentFishingCard))

	var count int64
	s.db.Model(&models.Application{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *ApplicationServiceSuite) TestSubmitRejectsInvalidPayload() {
	req := fishermanRequest()
	req.Data = models.JSONB{"marina": "مرسى التلول"} // no fishing card number

	_, err := s.svc.Submit(s.citizen.ID, req, fishermanDocs())
	s.Require().ErrorContains(err, "validation failed")
}

func (s *ApplicationServiceSuite) TestSequentialApplicationNumbers() {
	first := s.submit()
	second := s.submit()

	year := time.Now().UTC().Year()
	s.Equal(fmt.Sprintf("BRD-%d-0001", year), first.ApplicationNumber)
	s.Equal(fmt.Sprintf("BRD-%d-0002", year), second.ApplicationNumber)
}

func (s *ApplicationServiceSuite) TestNumberSequenceResetsEachYear() {
	year := time.Now().UTC().Year()
	s.Require().NoError(s.db.Create(&models.ApplicationCounter{Year: year - 1, LastSeq: 999}).Error)

	app := s.submit()
	s.Equal(fmt.Sprintf("BRD-%d-0001", year), app.ApplicationNumber)

	// Last year's counter is untouched.
	var counter models.ApplicationCounter
	s.Require().NoError(s.db.Where("year = ?", year-1).First(&counter).Error)
	s.Equal(999, counter.LastSeq)
}

func (s *ApplicationServiceSuite) TestSubmitAttachesDocumentsAndNotifies() {
	app := s.submit()

	s.Equal(models.StatusReceived, app.Status)

	var docCount int64
	s.db.Model(&models.Document{}).Where("application_id = ?", app.ID).Count(&docCount)
	s.Equal(int64(3), docCount)

	var noteCount int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", s.citizen.ID).Count(&noteCount)
	s.Equal(int64(1), noteCount)
}

func (s *ApplicationServiceSuite) TestFullLifecycleViaReceipt() {
	s.seedFishermanPrice(350)
	app := s.submit()

	app, err := s.svc.StartReview(s.admin.ID, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusUnderReview, app.Status)
	s.Require().NotNil(app.ReviewedBy)
	s.Equal(s.admin.ID, *app.ReviewedBy)

	app, err = s.svc.Approve(s.admin.ID, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApprovedPaymentPending, app.Status)
	s.Require().NotNil(app.PaymentAmount)
	s.Equal(350.0, *app.PaymentAmount)
	s.True(strings.HasPrefix(app.PaymentReference, "BRD-"))
	s.Require().NotNil(app.ApprovedBy)
	s.Equal(s.admin.ID, *app.ApprovedBy)

	receipt := &UploadResult{Key: "receipts/r1.pdf", URL: "/uploads/receipts/r1.pdf", Size: 2048, MimeType: "application/pdf"}
	app, err = s.svc.SubmitReceipt(s.citizen.ID, app.ID, receipt)
	s.Require().NoError(err)
	s.Equal(models.StatusPaymentSubmitted, app.Status)
	s.Equal("receipts/r1.pdf", app.PaymentReceiptPath)

	app, err = s.svc.VerifyPayment(s.finance.ID, app.ID, "matched bank statement")
	s.Require().NoError(err)
	s.Equal(models.StatusPaymentVerified, app.Status)
	s.Require().NotNil(app.VerifiedBy)
	s.Equal(s.finance.ID, *app.VerifiedBy)
	s.NotNil(app.VerifiedAt)

	app, err = s.svc.MarkReady(s.admin.ID, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusReady, app.Status)

	app, err = s.svc.Complete(s.admin.ID, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, app.Status)
	s.True(app.Status.IsTerminal())

	history, err := s.svc.History(app.ID, s.admin.ID, true)
	s.Require().NoError(err)
	s.Require().Len(history, 6)
	s.Equal(models.StatusReceived, history[0].OldStatus)
	s.Equal(models.StatusUnderReview, history[0].NewStatus)
	s.Equal(models.StatusCompleted, history[5].NewStatus)
}

func (s *ApplicationServiceSuite) TestApproveWithoutPriceFails() {
	app := s.submit()

	_, err := s.svc.StartReview(s.admin.ID, app.ID)
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.admin.ID, app.ID)
	s.Require().ErrorContains(err, "price not found")

	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusUnderReview, reloaded.Status)
	s.Nil(reloaded.PaymentAmount)
	s.Empty(reloaded.PaymentReference)

	var historyCount int64
	s.db.Model(&models.ApplicationStatusHistory{}).Where("application_id = ?", app.ID).Count(&historyCount)
	s.Equal(int64(1), historyCount)
}

func (s *ApplicationServiceSuite) TestApproveSkippingReviewFails() {
	s.seedFishermanPrice(350)
	app := s.submit()

	_, err := s.svc.Approve(s.admin.ID, app.ID)
	s.Require().ErrorIs(err, ErrInvalidTransition)
}

func (s *ApplicationServiceSuite) TestRejectRequiresReason() {
	app := s.submit()

	_, err := s.svc.Reject(s.admin.ID, app.ID, "   ")
	s.Require().ErrorContains(err, "rejection reason is required")

	app, err = s.svc.Reject(s.admin.ID, app.ID, "incomplete papers")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, app.Status)
	s.Equal("incomplete papers", app.RejectionReason)
}

func (s *ApplicationServiceSuite) TestSubmitReceiptRecordsDocumentAtomically() {
	s.seedFishermanPrice(350)
	app := s.submit()

	receipt := &UploadResult{Key: "receipts/early.pdf", Size: 1024, MimeType: "application/pdf"}

	// Still in received: the transition fails and no receipt document leaks.
	_, err := s.svc.SubmitReceipt(s.citizen.ID, app.ID, receipt)
	s.Require().ErrorIs(err, ErrInvalidTransition)

	var docCount int64
	s.db.Model(&models.Document{}).
		Where("application_id = ? AND doc_type = ?", app.ID, models.DocumentPaymentReceipt).
		Count(&docCount)
	s.Equal(int64(0), docCount)

	_, err = s.svc.StartReview(s.admin.ID, app.ID)
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.admin.ID, app.ID)
	s.Require().NoError(err)

	_, err = s.svc.SubmitReceipt(s.citizen.ID, app.ID, receipt)
	s.Require().NoError(err)

	s.db.Model(&models.Document{}).
		Where("application_id = ? AND doc_type = ?", app.ID, models.DocumentPaymentReceipt).
		Count(&docCount)
	s.Equal(int64(1), docCount)
}

func (s *ApplicationServiceSuite) TestRejectPaymentClearsReceipt() {
	s.seedFishermanPrice(350)
	app := s.submit()

	_, err := s.svc.StartReview(s.admin.ID, app.ID)
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.admin.ID, app.ID)
	s.Require().NoError(err)

	receipt := &UploadResult{Key: "receipts/blurry.jpg", Size: 512, MimeType: "image/jpeg"}
	_, err = s.svc.SubmitReceipt(s.citizen.ID, app.ID, receipt)
	s.Require().NoError(err)

	app, err = s.svc.RejectPayment(s.finance.ID, app.ID, "receipt unreadable")
	s.Require().NoError(err)
	s.Equal(models.StatusApprovedPaymentPending, app.Status)
	s.Empty(app.PaymentReceiptPath)
}

func (s *ApplicationServiceSuite) TestCancelByNonOwnerFails() {
	app := s.submit()
	other := createTestUser(s.T(), s.db, "other@example.com", models.RoleCitizen)

	_, err := s.svc.Cancel(other.ID, app.ID)
	s.Require().ErrorContains(err, "application not found")

	var reloaded models.Application
	s.Require().NoError(s.db.First(&reloaded, app.ID).Error)
	s.Equal(models.StatusReceived, reloaded.Status)
}

func (s *ApplicationServiceSuite) TestCancelByOwner() {
	app := s.submit()

	app, err := s.svc.Cancel(s.citizen.ID, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, app.Status)

	// Terminal: nothing moves a cancelled application.
	_, err = s.svc.StartReview(s.admin.ID, app.ID)
	s.Require().ErrorIs(err, ErrInvalidTransition)
}

func (s *ApplicationServiceSuite) TestGetDocumentVisibility() {
	app := s.submit()

	var doc models.Document
	s.Require().NoError(s.db.Where("application_id = ?", app.ID).First(&doc).Error)

	got, err := s.svc.GetDocument(app.ID, doc.ID, s.citizen.ID, false)
	s.Require().NoError(err)
	s.Equal(doc.ID, got.ID)

	other := createTestUser(s.T(), s.db, "peeker@example.com", models.RoleCitizen)
	_, err = s.svc.GetDocument(app.ID, doc.ID, other.ID, false)
	s.Require().ErrorContains(err, "application not found")

	_, err = s.svc.GetDocument(app.ID, uuid.New(), s.admin.ID, true)
	s.Require().ErrorContains(err, "document not found")
}

func (s *ApplicationServiceSuite) TestCitizenCannotSeeOthersApplication() {
	app := s.submit()
	other := createTestUser(s.T(), s.db, "nosy@example.com", models.RoleCitizen)

	_, err := s.svc.GetByID(app.ID, other.ID, false)
	s.Require().ErrorContains(err, "application not found")

	got, err := s.svc.GetByID(app.ID, other.ID, true)
	s.Require().NoError(err)
	s.Equal(app.ID, got.ID)
}
