// internal/services/pricing_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

type PricingServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *PricingService
	finance *models.User
}

func TestPricingServiceSuite(t *testing.T) {
	suite.Run(t, new(PricingServiceSuite))
}

func (s *PricingServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.svc = NewPricingService(s.db, nil)
	s.finance = createTestUser(s.T(), s.db, "pricing@example.com", models.RoleFinancialOfficer)
}

func (s *PricingServiceSuite) createPrice(amount float64, boatType string, from time.Time, to *time.Time) {
	s.Require().NoError(s.db.Create(&models.LicensePrice{
		ApplicationType: models.ApplicationTypeBoat,
		Category:        "مركب بمحرك",
		DurationMonths:  12,
		BoatType:        boatType,
		Amount:          amount,
		Currency:        "EGP",
		EffectiveFrom:   from,
		EffectiveTo:     to,
		IsActive:        true,
		CreatedBy:       s.finance.ID,
	}).Error)
}

func boatApplication(boatType string) *models.Application {
	return &models.Application{
		ApplicationType: models.ApplicationTypeBoat,
		LicenseCategory: "مركب بمحرك",
		DurationMonths:  12,
		BoatType:        boatType,
	}
}

func (s *PricingServiceSuite) TestLatestEffectiveFromWins() {
	now := time.Now()
	s.createPrice(100, "", now.Add(-48*time.Hour), nil)
	s.createPrice(150, "", now.Add(-1*time.Hour), nil)

	price, err := s.svc.ResolveFee(nil, boatApplication(""), now)
	s.Require().NoError(err)
	s.Equal(150.0, price.Amount)
}

func (s *PricingServiceSuite) TestClosedWindowExcluded() {
	now := time.Now()
	closedAt := now.Add(-1 * time.Hour)
	s.createPrice(100, "", now.Add(-48*time.Hour), &closedAt)

	_, err := s.svc.ResolveFee(nil, boatApplication(""), now)
	s.Require().ErrorContains(err, "price not found")
}

func (s *PricingServiceSuite) TestFutureWindowExcluded() {
	now := time.Now()
	s.createPrice(100, "", now.Add(24*time.Hour), nil)

	_, err := s.svc.ResolveFee(nil, boatApplication(""), now)
	s.Require().ErrorContains(err, "price not found")

	// The same row answers once its window opens.
	price, err := s.svc.ResolveFee(nil, boatApplication(""), now.Add(48*time.Hour))
	s.Require().NoError(err)
	s.Equal(100.0, price.Amount)
}

func (s *PricingServiceSuite) TestExactBoatTypeBeatsWildcard() {
	now := time.Now()
	s.createPrice(200, "", now.Add(-24*time.Hour), nil)
	s.createPrice(300, "مركب بمحرك", now.Add(-24*time.Hour), nil)

	price, err := s.svc.ResolveFee(nil, boatApplication("مركب بمحرك"), now)
	s.Require().NoError(err)
	s.Equal(300.0, price.Amount)

	// A boat type without its own row falls back to the wildcard.
	price, err = s.svc.ResolveFee(nil, boatApplication("لنش نقل"), now)
	s.Require().NoError(err)
	s.Equal(200.0, price.Amount)
}

func (s *PricingServiceSuite) TestCreateValidation() {
	_, err := s.svc.Create(&PriceRequest{
		ApplicationType: models.ApplicationTypeBoat,
		Category:        "not a category",
		DurationMonths:  12,
		Amount:          100,
	}, s.finance.ID)
	s.Require().ErrorContains(err, "invalid license category")

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = s.svc.Create(&PriceRequest{
		ApplicationType: models.ApplicationTypeBoat,
		Category:        "مركب بمحرك",
		DurationMonths:  12,
		Amount:          100,
		EffectiveFrom:   &from,
		EffectiveTo:     &to,
	}, s.finance.ID)
	s.Require().ErrorContains(err, "effective_to must be after effective_from")
}

func (s *PricingServiceSuite) TestCloseEndsWindow() {
	price, err := s.svc.Create(&PriceRequest{
		ApplicationType: models.ApplicationTypeBoat,
		Category:        "مركب بمحرك",
		DurationMonths:  12,
		Amount:          250,
	}, s.finance.ID)
	s.Require().NoError(err)

	closed, err := s.svc.Close(price.ID, nil)
	s.Require().NoError(err)
	s.False(closed.IsActive)
	s.NotNil(closed.EffectiveTo)

	_, err = s.svc.ResolveFee(nil, boatApplication(""), time.Now().Add(time.Minute))
	s.Require().ErrorContains(err, "price not found")
}
