package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vegobolt/vegobolt-backend/internal/users"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/googleauth"
	"gorm.io/gorm"
)

// googlePasswordSentinel prefixes the placeholder hash stored for accounts
// provisioned through Google sign-in. It is not valid bcrypt, so password
// login for these accounts always fails.
const googlePasswordSentinel = "google-oauth2|"

// GoogleLogin verifies the Google ID token and signs the matching account
// in, provisioning it on first contact. Repeat sight syncs the stored
// profile with the provider's claims.
func (s *service) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResponse, error) {
	if s.google == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google sign-in is not configured")
	}

	identity, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid Google token")
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		user, err = s.provisionGoogleUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	} else {
		user, err = s.syncGoogleIdentity(ctx, user, identity)
		if err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeAccountInactive, inactiveAccountMessage)
	}

	return s.issueSession(ctx, user)
}

func (s *service) provisionGoogleUser(ctx context.Context, identity *googleauth.Identity) (*models.User, error) {
	firstName, lastName := googleNames(identity)

	name := displayName(firstName, lastName)
	if name == "" {
		name = identity.Email
	}

	var picture *string
	if identity.Picture != "" {
		picture = &identity.Picture
	}

	// verification follows the provider's email_verified claim
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:           identity.Email,
		PasswordHash:    fmt.Sprintf("%s%s", googlePasswordSentinel, identity.Subject),
		FirstName:       firstName,
		LastName:        lastName,
		DisplayName:     name,
		ProfilePicture:  picture,
		IsEmailVerified: identity.EmailVerified,
	})
	if err != nil {
		if s.isDupe(err) {
			// lost a race against a concurrent first login, reuse the row
			existing, findErr := s.users.FindByEmail(ctx, identity.Email)
			if findErr == nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "provision google user")
	}
	return user, nil
}

// syncGoogleIdentity reconciles an existing account with the provider's
// claims: verification only ever upgrades, and empty profile fields are
// backfilled without overwriting anything the user has set.
func (s *service) syncGoogleIdentity(ctx context.Context, user *models.User, identity *googleauth.Identity) (*models.User, error) {
	if identity.EmailVerified && !user.IsEmailVerified {
		if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upgrade verification")
		}
		user.IsEmailVerified = true
	}

	firstName, lastName := googleNames(identity)

	dto := users.UpdateProfileDTO{}
	if user.FirstName == "" && firstName != "" {
		dto.FirstName = &firstName
	}
	if user.LastName == "" && lastName != "" {
		dto.LastName = &lastName
	}
	if user.DisplayName == "" {
		if name := displayName(firstName, lastName); name != "" {
			dto.DisplayName = &name
		}
	} else if dto.FirstName != nil || dto.LastName != nil {
		// pin the existing display name so the name backfill does not
		// trigger a recompute over it
		dto.DisplayName = &user.DisplayName
	}
	if (user.ProfilePicture == nil || *user.ProfilePicture == "") && identity.Picture != "" {
		dto.ProfilePicture = &identity.Picture
	}
	if dto == (users.UpdateProfileDTO{}) {
		return user, nil
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "backfill google profile")
	}
	return updated, nil
}

func googleNames(identity *googleauth.Identity) (string, string) {
	firstName := identity.GivenName
	lastName := identity.FamilyName
	if firstName == "" && identity.Name != "" {
		parts := strings.SplitN(identity.Name, " ", 2)
		firstName = parts[0]
		if len(parts) > 1 {
			lastName = parts[1]
		}
	}
	return firstName, lastName
}
