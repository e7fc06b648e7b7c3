// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

type AdminService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

type DashboardStats struct {
	TotalUsers           int64            `json:"total_users"`
	TotalApplications    int64            `json:"total_applications"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	ApplicationsThisYear int64            `json:"applications_this_year"`
	PendingReview        int64            `json:"pending_review"`
	PendingVerification  int64            `json:"pending_verification"`
	CollectedFees        float64          `json:"collected_fees"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required"`
	Reason string            `json:"reason,omitempty"`
}

func NewAdminService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *AdminService {
	return &AdminService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
	}
}

func (s *AdminService) GetDashboard() (*DashboardStats, error) {
	stats := &DashboardStats{
		ApplicationsByStatus: make(map[string]int64),
	}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Model(&models.Application{}).Count(&stats.TotalApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Application{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate applications by status: %w", err)
	}
	for _, row := range rows {
		stats.ApplicationsByStatus[row.Status] = row.Count
	}

	stats.PendingReview = stats.ApplicationsByStatus[string(models.StatusReceived)] +
		stats.ApplicationsByStatus[string(models.StatusUnderReview)]
	stats.PendingVerification = stats.ApplicationsByStatus[string(models.StatusPaymentSubmitted)]

	yearStart := time.Date(time.Now().UTC().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.db.Model(&models.Application{}).
		Where("created_at >= ?", yearStart).
		Count(&stats.ApplicationsThisYear).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications this year: %w", err)
	}

	var collected *float64
	err := s.db.Model(&models.Application{}).
		Select("sum(payment_amount)").
		Where("status IN ?", []models.ApplicationStatus{
			models.StatusPaymentVerified, models.StatusReady, models.StatusCompleted,
		}).
		Scan(&collected).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum collected fees: %w", err)
	}
	if collected != nil {
		stats.CollectedFees = *collected
	}

	return stats, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams, role models.UserRole) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("email LIKE ? OR full_name LIKE ? OR national_id LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	query = utils.ApplySort(query, params, []string{"created_at", "email", "full_name"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	result := utils.CreatePaginationResult(users, total, params)
	return &result, nil
}

func (s *AdminService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Applications").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// UpdateUserRole is a super-admin operation. An actor cannot change their own
// role, so the last super admin cannot lock everyone out.
func (s *AdminService) UpdateUserRole(actorID, userID uuid.UUID, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if actorID == userID {
		return nil, errors.New("unauthorized to change own role")
	}

	switch req.Role {
	case models.RoleCitizen, models.RoleAdmin, models.RoleSuperAdmin, models.RoleFinancialOfficer:
	default:
		return nil, errors.New("invalid role")
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("role", req.Role).Error; err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	user.Role = req.Role

	return user, nil
}

func (s *AdminService) UpdateUserStatus(actorID, userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if actorID == userID {
		return nil, errors.New("unauthorized to change own status")
	}

	if req.Status != models.UserStatusActive && req.Status != models.UserStatusSuspended {
		return nil, errors.New("invalid status")
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.UserStatusSuspended {
		// A suspended account also loses its sessions.
		updates["refresh_tokens"] = nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = req.Status

	title := "تحديث حالة الحساب"
	message := req.Reason
	if message == "" {
		message = string(req.Status)
	}
	if err := s.notifications.Notify(nil, user.ID, nil, models.NotificationGeneral, title, message); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AdminService) ListAuditLogs(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.AuditLog{})
	if params.Search != "" {
		query = query.Where("action LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, params, []string{"created_at", "action"})
	query = utils.ApplyPagination(query, params)
	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := utils.CreatePaginationResult(logs, total, params)
	return &result, nil
}
