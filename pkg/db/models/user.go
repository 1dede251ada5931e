package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity. Google-provisioned accounts
// carry a sentinel password hash that can never match a real password.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email           string    `gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash    string    `gorm:"column:password_hash;not null"`
	FirstName       string    `gorm:"column:first_name;not null"`
	LastName        string    `gorm:"column:last_name;not null"`
	DisplayName     string    `gorm:"column:display_name;not null"`
	Phone           *string   `gorm:"column:phone"`
	ProfilePicture  *string   `gorm:"column:profile_picture"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	IsAdmin         bool      `gorm:"column:is_admin;not null;default:false"`
	IsEmailVerified bool      `gorm:"column:is_email_verified;not null;default:false"`

	VerificationToken          *string    `gorm:"column:verification_token"`
	VerificationTokenExpiresAt *time.Time `gorm:"column:verification_token_expires_at"`
	ResetToken                 *string    `gorm:"column:reset_token"`
	ResetTokenExpiresAt        *time.Time `gorm:"column:reset_token_expires_at"`

	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key in Go so sqlite and postgres behave
// the same way.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
