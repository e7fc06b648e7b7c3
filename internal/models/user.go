// internal/models/user.go
package models

import (
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const MaxFailedLogins = 5

type User struct {
	BaseModel
	FullName          string         `json:"full_name" gorm:"size:120;not null"`
	Email             string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	NationalID        string         `json:"national_id" gorm:"uniqueIndex;size:14;not null"`
	Phone             string         `json:"phone" gorm:"size:20"`
	PasswordHash      string         `json:"-" gorm:"size:255;not null"`
	Role              UserRole       `json:"role" gorm:"type:varchar(20);default:'citizen';index"`
	Status            UserStatus     `json:"status" gorm:"type:varchar(20);default:'active'"`
	FailedLogins      int            `json:"-" gorm:"default:0"`
	LockedUntil       *time.Time     `json:"-"`
	PasswordChangedAt *time.Time     `json:"-"`
	RefreshTokens     pq.StringArray `json:"-" gorm:"type:text[]"` // hashed, cleared wholesale
	LastLoginAt       *time.Time     `json:"last_login_at"`

	// Relationships
	Applications  []Application  `json:"applications,omitempty" gorm:"foreignKey:UserID"`
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin || u.Role == RoleFinancialOfficer
}

func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
