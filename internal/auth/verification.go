package auth

import (
	"context"
	"errors"

	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"gorm.io/gorm"
)

const invalidVerificationTokenMessage = "Invalid or expired verification token"

// VerifyEmail consumes a verification token and marks the account verified.
func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidToken, invalidVerificationTokenMessage)
	}

	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeInvalidToken, invalidVerificationTokenMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
	}

	if user.VerificationTokenExpiresAt == nil || s.now().After(*user.VerificationTokenExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeInvalidToken, invalidVerificationTokenMessage)
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark email verified")
	}
	return nil
}

// ResendVerification rotates the token for an unverified account and
// re-sends the email. Unknown addresses and already-verified accounts are
// reported as such.
func (s *service) ResendVerification(ctx context.Context, req ResendVerificationRequest) error {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "No account found for that email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.IsEmailVerified {
		return pkgerrors.New(pkgerrors.CodeAlreadyVerified, "Email is already verified")
	}

	token, err := s.generateToken()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.tokenCfg.VerificationTTL)

	if err := s.users.SetVerificationToken(ctx, user.ID, token, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store verification token")
	}

	if err := s.mail.SendVerificationEmail(ctx, user.Email, user.DisplayName, s.verificationURL(token)); err != nil {
		mailCtx := s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Error(mailCtx, "auth.resend_verification.email_failed", err)
	}
	return nil
}
