// internal/services/auth_service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

type AuthServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *AuthService
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.svc = NewAuthService(s.db, testConfig())
}

func (s *AuthServiceSuite) register(email, nationalID string) *AuthResponse {
	resp, err := s.svc.Register(&RegisterRequest{
		FullName:   "Ahmed Hassan",
		Email:      email,
		NationalID: nationalID,
		Password:   "Str0ng!Passw0rd",
	})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceSuite) TestRegisterAndLogin() {
	resp := s.register("ahmed@example.com", "29901011234567")

	s.Equal(models.RoleCitizen, resp.User.Role)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.Equal("Bearer", resp.TokenType)

	login, err := s.svc.Login(&LoginRequest{Email: "ahmed@example.com", Password: "Str0ng!Passw0rd"})
	s.Require().NoError(err)
	s.Equal(resp.User.ID, login.User.ID)
	s.NotNil(login.User.LastLoginAt)
}

func (s *AuthServiceSuite) TestRegisterDuplicateEmail() {
	s.register("dup@example.com", "29901011234567")

	_, err := s.svc.Register(&RegisterRequest{
		FullName:   "Someone Else",
		Email:      "dup@example.com",
		NationalID: "29901017654321",
		Password:   "Str0ng!Passw0rd",
	})
	s.Require().ErrorContains(err, "email already exists")
}

func (s *AuthServiceSuite) TestRegisterDuplicateNationalID() {
	s.register("first@example.com", "29901011234567")

	_, err := s.svc.Register(&RegisterRequest{
		FullName:   "Someone Else",
		Email:      "second@example.com",
		NationalID: "29901011234567",
		Password:   "Str0ng!Passw0rd",
	})
	s.Require().ErrorContains(err, "national id already exists")
}

func (s *AuthServiceSuite) TestRegisterRejectsWeakPassword() {
	_, err := s.svc.Register(&RegisterRequest{
		FullName:   "Ahmed Hassan",
		Email:      "weak@example.com",
		NationalID: "29901011234567",
		Password:   "password",
	})
	s.Require().ErrorContains(err, "validation failed")
}

func (s *AuthServiceSuite) TestLockoutAfterRepeatedFailures() {
	resp := s.register("locked@example.com", "29901011234567")

	for i := 0; i < models.MaxFailedLogins; i++ {
		_, err := s.svc.Login(&LoginRequest{Email: "locked@example.com", Password: fmt.Sprintf("Wrong!Pass%d", i)})
		s.Require().ErrorContains(err, "invalid email or password")
	}

	// Even the correct password bounces while the lock holds.
	_, err := s.svc.Login(&LoginRequest{Email: "locked@example.com", Password: "Str0ng!Passw0rd"})
	s.Require().ErrorContains(err, "temporarily locked")

	var user models.User
	s.Require().NoError(s.db.First(&user, resp.User.ID).Error)
	s.Require().NotNil(user.LockedUntil)
	s.True(user.LockedUntil.After(time.Now()))
}

func (s *AuthServiceSuite) TestFailedCountResetsOnSuccess() {
	resp := s.register("flaky@example.com", "29901011234567")

	_, err := s.svc.Login(&LoginRequest{Email: "flaky@example.com", Password: "Wrong!Pass1"})
	s.Require().Error(err)

	_, err = s.svc.Login(&LoginRequest{Email: "flaky@example.com", Password: "Str0ng!Passw0rd"})
	s.Require().NoError(err)

	var user models.User
	s.Require().NoError(s.db.First(&user, resp.User.ID).Error)
	s.Equal(0, user.FailedLogins)
}

func (s *AuthServiceSuite) TestSuspendedAccountCannotLogin() {
	resp := s.register("suspended@example.com", "29901011234567")
	s.Require().NoError(s.db.Model(resp.User).Update("status", models.UserStatusSuspended).Error)

	_, err := s.svc.Login(&LoginRequest{Email: "suspended@example.com", Password: "Str0ng!Passw0rd"})
	s.Require().ErrorContains(err, "account is suspended")
}

func (s *AuthServiceSuite) TestRefreshTokenRotation() {
	resp := s.register("rotate@example.com", "29901011234567")

	rotated, err := s.svc.RefreshToken(resp.RefreshToken)
	s.Require().NoError(err)
	s.NotEmpty(rotated.RefreshToken)
	s.NotEqual(resp.RefreshToken, rotated.RefreshToken)

	// The presented token was consumed by the rotation.
	_, err = s.svc.RefreshToken(resp.RefreshToken)
	s.Require().ErrorContains(err, "invalid refresh token")

	_, err = s.svc.RefreshToken(rotated.RefreshToken)
	s.Require().NoError(err)
}

func (s *AuthServiceSuite) TestLogoutRevokesToken() {
	resp := s.register("logout@example.com", "29901011234567")

	s.Require().NoError(s.svc.Logout(resp.User.ID, resp.RefreshToken))

	_, err := s.svc.RefreshToken(resp.RefreshToken)
	s.Require().ErrorContains(err, "invalid refresh token")
}

func (s *AuthServiceSuite) TestChangePasswordRevokesSessions() {
	resp := s.register("changer@example.com", "29901011234567")

	err := s.svc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "TotallyWrong!1",
		NewPassword:     "N3w!Passw0rd",
	})
	s.Require().ErrorContains(err, "current password is incorrect")

	s.Require().NoError(s.svc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "Str0ng!Passw0rd",
		NewPassword:     "N3w!Passw0rd",
	}))

	// Outstanding refresh tokens die with the old password.
	_, err = s.svc.RefreshToken(resp.RefreshToken)
	s.Require().ErrorContains(err, "invalid refresh token")

	_, err = s.svc.Login(&LoginRequest{Email: "changer@example.com", Password: "N3w!Passw0rd"})
	s.Require().NoError(err)
}
