package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByVerificationToken loads the user holding the given verification token.
func (r *Repository) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("verification_token = ?", token).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken loads the user holding the given reset token.
func (r *Repository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("reset_token = ?", token).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// SetVerificationToken stores a fresh verification token and its expiry.
func (r *Repository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"verification_token":            token,
			"verification_token_expires_at": expiresAt,
		}).Error
}

// MarkEmailVerified flips the verified flag and clears the token.
func (r *Repository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_email_verified":             true,
			"verification_token":            nil,
			"verification_token_expires_at": nil,
		}).Error
}

// SetResetToken stores a fresh password reset token and its expiry.
func (r *Repository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_token":            token,
			"reset_token_expires_at": expiresAt,
		}).Error
}

// UpdatePassword replaces the hash and clears any outstanding reset token.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":          passwordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
		}).Error
}

// UpdateProfile applies the non-nil fields from the DTO. When name parts
// change without an explicit display name, the display name is recomputed
// from the resulting first and last name.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, dto UpdateProfileDTO) (*models.User, error) {
	updates := map[string]any{}
	if dto.FirstName != nil {
		updates["first_name"] = *dto.FirstName
	}
	if dto.LastName != nil {
		updates["last_name"] = *dto.LastName
	}
	if dto.DisplayName != nil {
		updates["display_name"] = *dto.DisplayName
	} else if dto.FirstName != nil || dto.LastName != nil {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		first, last := current.FirstName, current.LastName
		if dto.FirstName != nil {
			first = *dto.FirstName
		}
		if dto.LastName != nil {
			last = *dto.LastName
		}
		updates["display_name"] = strings.TrimSpace(first + " " + last)
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.ProfilePicture != nil {
		updates["profile_picture"] = *dto.ProfilePicture
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the account. Maintenance tickets cascade at the DB level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}
