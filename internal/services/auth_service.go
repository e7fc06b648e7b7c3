// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

const lockoutDuration = 15 * time.Minute

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterRequest struct {
	FullName   string `json:"full_name" validate:"required,min=3,max=120"`
	Email      string `json:"email" validate:"required,email"`
	NationalID string `json:"national_id" validate:"required,national_id"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Password   string `json:"password" validate:"required,strong_password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=3,max=120"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Register creates a citizen account. Staff accounts are provisioned by a
// super admin, never self-registered.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.User
	if err := s.db.Where("email = ? OR national_id = ?", req.Email, req.NationalID).First(&existing).Error; err == nil {
		if existing.Email == req.Email {
			return nil, errors.New("user with this email already exists")
		}
		return nil, errors.New("user with this national id already exists")
	}

	user := &models.User{
		FullName:   req.FullName,
		Email:      req.Email,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Role:       models.RoleCitizen,
		Status:     models.UserStatusActive,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("refresh_tokens", user.RefreshTokens).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return resp, nil
}

// Login rejects locked and suspended accounts, counts failed attempts, and
// locks the account after the fifth consecutive failure.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, errors.New("account is temporarily locked")
	}
	if user.Status == models.UserStatusSuspended {
		return nil, errors.New("account is suspended")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		user.FailedLogins++
		updates := map[string]interface{}{"failed_logins": user.FailedLogins}
		if user.FailedLogins >= models.MaxFailedLogins {
			lockedUntil := now.Add(lockoutDuration)
			updates["locked_until"] = &lockedUntil
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to record failed login attempt")
		}
		return nil, errors.New("invalid email or password")
	}

	user.FailedLogins = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	resp, err := s.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"failed_logins":  0,
		"locked_until":   nil,
		"last_login_at":  &now,
		"refresh_tokens": user.RefreshTokens,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update login state: %w", err)
	}

	return resp, nil
}

// RefreshToken rotates a refresh token: the presented token must be in the
// user's stored list, and is replaced by the newly issued one.
func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, errors.New("account is suspended")
	}

	hashed := utils.HashString(refreshToken)
	found := false
	remaining := make(pq.StringArray, 0, len(user.RefreshTokens))
	for _, t := range user.RefreshTokens {
		if t == hashed {
			found = true
			continue
		}
		remaining = append(remaining, t)
	}
	if !found {
		return nil, errors.New("invalid refresh token")
	}
	user.RefreshTokens = remaining

	resp, err := s.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&user).Update("refresh_tokens", user.RefreshTokens).Error; err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return resp, nil
}

func (s *AuthService) Logout(userID uuid.UUID, refreshToken string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return errors.New("user not found")
	}

	hashed := utils.HashString(refreshToken)
	remaining := make(pq.StringArray, 0, len(user.RefreshTokens))
	for _, t := range user.RefreshTokens {
		if t != hashed {
			remaining = append(remaining, t)
		}
	}

	if err := s.db.Model(&user).Update("refresh_tokens", remaining).Error; err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// ChangePassword revokes every outstanding refresh token so stolen sessions
// die with the old password.
func (s *AuthService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return errors.New("user not found")
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"password_hash":       user.PasswordHash,
		"password_changed_at": &now,
		"refresh_tokens":      pq.StringArray{},
	}).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Stored hashed; cap the list so a chatty client cannot grow it forever.
	user.RefreshTokens = append(user.RefreshTokens, utils.HashString(refreshToken))
	if len(user.RefreshTokens) > 10 {
		user.RefreshTokens = user.RefreshTokens[len(user.RefreshTokens)-10:]
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
