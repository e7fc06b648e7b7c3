// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.ApplicationCounter{},
		&models.ApplicationStatusRef{},
		&models.ApplicationStatusHistory{},
		&models.Document{},
		&models.ServiceRequiredDocument{},
		&models.LicensePrice{},
		&models.Notification{},
		&models.AuditLog{},
		&models.ProcessedWebhook{},
		&models.News{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_type_status ON applications(application_type, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_number ON applications(application_number)",
		"CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_applications_payment_ref ON applications(payment_reference)",

		// History indexes
		"CREATE INDEX IF NOT EXISTS idx_status_history_application ON application_status_history(application_id, created_at)",

		// Price indexes
		"CREATE INDEX IF NOT EXISTS idx_license_prices_lookup ON license_prices(application_type, category, is_renewal, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_license_prices_effective ON license_prices(effective_from DESC)",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Webhook ledger
		"CREATE INDEX IF NOT EXISTS idx_processed_webhooks_app ON processed_webhooks(application_id)",

		// News
		"CREATE INDEX IF NOT EXISTS idx_news_published ON news(is_published, published_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	if err := seedStatuses(db); err != nil {
		return err
	}
	if err := seedRequiredDocuments(db); err != nil {
		return err
	}
	if err := seedSuperAdmin(db); err != nil {
		return err
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

func seedStatuses(db *gorm.DB) error {
	statuses := []models.ApplicationStatusRef{
		{Code: models.StatusReceived, NameEn: "Received", NameAr: "تم الاستلام", Color: "#2196F3", Icon: "inbox", AllowedNext: []string{"under_review", "rejected", "cancelled"}, SortOrder: 1},
		{Code: models.StatusUnderReview, NameEn: "Under Review", NameAr: "قيد المراجعة", Color: "#FF9800", Icon: "search", AllowedNext: []string{"approved_payment_pending", "rejected", "cancelled"}, SortOrder: 2},
		{Code: models.StatusApprovedPaymentPending, NameEn: "Approved, Awaiting Payment", NameAr: "تمت الموافقة - في انتظار السداد", Color: "#9C27B0", Icon: "credit-card", AllowedNext: []string{"payment_submitted", "completed", "rejected", "cancelled"}, SortOrder: 3},
		{Code: models.StatusPaymentSubmitted, NameEn: "Receipt Submitted", NameAr: "تم رفع إيصال السداد", Color: "#00BCD4", Icon: "upload", AllowedNext: []string{"payment_verified", "approved_payment_pending", "rejected", "cancelled"}, SortOrder: 4},
		{Code: models.StatusPaymentVerified, NameEn: "Payment Verified", NameAr: "تم التحقق من السداد", Color: "#4CAF50", Icon: "check-circle", AllowedNext: []string{"ready"}, SortOrder: 5},
		{Code: models.StatusReady, NameEn: "Ready for Pickup", NameAr: "جاهز للاستلام", Color: "#8BC34A", Icon: "package", AllowedNext: []string{"completed"}, SortOrder: 6},
		{Code: models.StatusCompleted, NameEn: "Completed", NameAr: "مكتمل", Color: "#4CAF50", Icon: "check", AllowedNext: []string{}, SortOrder: 7},
		{Code: models.StatusRejected, NameEn: "Rejected", NameAr: "مرفوض", Color: "#F44336", Icon: "x-circle", AllowedNext: []string{}, SortOrder: 8},
		{Code: models.StatusCancelled, NameEn: "Cancelled", NameAr: "ملغي", Color: "#9E9E9E", Icon: "slash", AllowedNext: []string{}, SortOrder: 9},
	}

	for _, s := range statuses {
		var count int64
		db.Model(&models.ApplicationStatusRef{}).Where("code = ?", s.Code).Count(&count)
		if count == 0 {
			if err := db.Create(&s).Error; err != nil {
				return fmt.Errorf("failed to seed status %s: %w", s.Code, err)
			}
		}
	}

	return nil
}

func seedRequiredDocuments(db *gorm.DB) error {
	required := []models.ServiceRequiredDocument{
		{ApplicationType: models.ApplicationTypeFisherman, DocumentTypes: []string{"national_id_copy", "personal_photo", "fishing_card"}},
		{ApplicationType: models.ApplicationTypeBoat, DocumentTypes: []string{"national_id_copy", "boat_registration"}},
		{ApplicationType: models.ApplicationTypeVehicle, DocumentTypes: []string{"national_id_copy", "vehicle_license_copy"}},
		{ApplicationType: models.ApplicationTypeTrade, DocumentTypes: []string{"national_id_copy", "commercial_record"}},
		{ApplicationType: models.ApplicationTypeEntry, DocumentTypes: []string{"national_id_copy"}},
		{ApplicationType: models.ApplicationTypeOther, DocumentTypes: []string{"national_id_copy"}},
	}

	for _, r := range required {
		var count int64
		db.Model(&models.ServiceRequiredDocument{}).Where("application_type = ?", r.ApplicationType).Count(&count)
		if count == 0 {
			if err := db.Create(&r).Error; err != nil {
				return fmt.Errorf("failed to seed required documents for %s: %w", r.ApplicationType, err)
			}
		}
	}

	return nil
}

func seedSuperAdmin(db *gorm.DB) error {
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			FullName:   "System Administrator",
			Email:      "admin@bardawil.gov.eg",
			NationalID: "00000000000000",
			Role:       models.RoleSuperAdmin,
			Status:     models.UserStatusActive,
		}

		if err := admin.SetPassword("ChangeMe123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create super admin user: %w", err)
		}

		logrus.Info("Default super admin user created")
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
