// internal/services/main_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/database"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

var (
	testDBCounter   int
	testUserCounter int
)

// setupTestDB opens a fresh in-memory database, migrated and seeded the same
// way the server boots.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, database.SeedInitialData(db))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Gateway: config.GatewayConfig{
			BaseURL:       "http://gateway.invalid/api",
			APIKey:        "test-api-key",
			IntegrationID: 42,
			IframeID:      "100",
			HMACSecret:    "test-hmac-secret",
			Currency:      "EGP",
			TimeoutSec:    5,
		},
		I18n: config.I18nConfig{
			DefaultLocale: "ar",
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	testUserCounter++
	user := &models.User{
		FullName:   "Test User",
		Email:      email,
		NationalID: fmt.Sprintf("2%013d", testUserCounter),
		Role:       role,
		Status:     models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Str0ngPass!word"))
	require.NoError(t, db.Create(user).Error)

	return user
}
