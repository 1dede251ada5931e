package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vegobolt/vegobolt-backend/internal/users"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/security"
	"gorm.io/gorm"
)

const duplicateEmailMessage = "user already exists with this email"

// Register provisions a local-credential account and kicks off email
// verification. The unique index on email is the authority for duplicates;
// the lookup before insert only produces a friendlier fast path.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateEmail, duplicateEmailMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	token, err := security.GenerateToken(s.tokenCfg.TokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}
	expiresAt := s.now().Add(s.tokenCfg.VerificationTTL)

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:                      email,
		PasswordHash:               hash,
		FirstName:                  strings.TrimSpace(req.FirstName),
		LastName:                   strings.TrimSpace(req.LastName),
		DisplayName:                displayName(req.FirstName, req.LastName),
		Phone:                      req.Phone,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: &expiresAt,
	})
	if err != nil {
		if s.isDupe(err) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateEmail, duplicateEmailMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	// delivery failures never roll the account back
	if err := s.mail.SendVerificationEmail(ctx, user.Email, user.DisplayName, s.verificationURL(token)); err != nil {
		mailCtx := s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Error(mailCtx, "auth.register.verification_email_failed", err)
	}

	// the account gets a usable session right away; password login stays
	// gated until the email is verified
	sessionToken, err := s.mintToken(user, s.now())
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		Token: sessionToken,
		User:  users.FromModel(user),
	}, nil
}

func displayName(firstName, lastName string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", strings.TrimSpace(firstName), strings.TrimSpace(lastName)))
}
