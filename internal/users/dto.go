package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials and tokens.
type UserDTO struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	DisplayName     string     `json:"display_name"`
	Phone           *string    `json:"phone,omitempty"`
	ProfilePicture  *string    `json:"profile_picture,omitempty"`
	IsActive        bool       `json:"is_active"`
	IsAdmin         bool       `json:"is_admin"`
	IsEmailVerified bool       `json:"is_email_verified"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	DisplayName     string
	Phone           *string
	ProfilePicture  *string
	IsEmailVerified bool

	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time
}

// UpdateProfileDTO carries the mutable profile fields. Nil means unchanged.
type UpdateProfileDTO struct {
	FirstName      *string
	LastName       *string
	DisplayName    *string
	Phone          *string
	ProfilePicture *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		DisplayName:     u.DisplayName,
		Phone:           u.Phone,
		ProfilePicture:  u.ProfilePicture,
		IsActive:        u.IsActive,
		IsAdmin:         u.IsAdmin,
		IsEmailVerified: u.IsEmailVerified,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:                      c.Email,
		PasswordHash:               c.PasswordHash,
		FirstName:                  c.FirstName,
		LastName:                   c.LastName,
		DisplayName:                c.DisplayName,
		Phone:                      c.Phone,
		ProfilePicture:             c.ProfilePicture,
		IsActive:                   true,
		IsEmailVerified:            c.IsEmailVerified,
		VerificationToken:          c.VerificationToken,
		VerificationTokenExpiresAt: c.VerificationTokenExpiresAt,
	}
}
