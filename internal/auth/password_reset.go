package auth

import (
	"context"
	"errors"

	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidResetTokenMessage = "Invalid or expired reset token"

// RequestPasswordReset issues a reset token when the address exists. The
// response never reveals whether it does.
func (s *service) RequestPasswordReset(ctx context.Context, req RequestPasswordResetRequest) error {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	token, err := s.generateToken()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.tokenCfg.ResetTTL)

	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, user.DisplayName, s.resetURL(token)); err != nil {
		mailCtx := s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Error(mailCtx, "auth.password_reset.email_failed", err)
	}
	return nil
}

// ResetPassword consumes the reset token and replaces the credential.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.users.FindByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeInvalidToken, invalidResetTokenMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}

	if user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeInvalidToken, invalidResetTokenMessage)
	}

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

func (s *service) generateToken() (string, error) {
	token, err := security.GenerateToken(s.tokenCfg.TokenBytes)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
	}
	return token, nil
}
