package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/internal/users"
	pkgAuth "github.com/vegobolt/vegobolt-backend/pkg/auth"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/googleauth"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/mailer"
	"github.com/vegobolt/vegobolt-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	inactiveAccountMessage    = "Account is inactive. Please contact support."
	unverifiedEmailMessage    = "Please verify your email before logging in"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, req ResendVerificationRequest) error
	RequestPasswordReset(ctx context.Context, req RequestPasswordResetRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, dto users.UpdateProfileDTO) (*models.User, error)
}

type uniqueChecker interface {
	IsUniqueViolation(err error) bool
}

type service struct {
	users    userRepository
	mail     mailer.Sender
	google   googleauth.Verifier
	logg     *logger.Logger
	jwtCfg   config.JWTConfig
	tokenCfg config.AuthTokenConfig
	appCfg   config.AppConfig
	isDupe   func(error) bool
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Mailer         mailer.Sender
	GoogleVerifier googleauth.Verifier
	Logger         *logger.Logger
	JWTConfig      config.JWTConfig
	TokenConfig    config.AuthTokenConfig
	AppConfig      config.AppConfig

	// IsUniqueViolation classifies a create error as a duplicate email.
	IsUniqueViolation func(error) bool
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	isDupe := params.IsUniqueViolation
	if isDupe == nil {
		isDupe = func(error) bool { return false }
	}
	return &service{
		users:    params.UserRepo,
		mail:     params.Mailer,
		google:   params.GoogleVerifier,
		logg:     params.Logger,
		jwtCfg:   params.JWTConfig,
		tokenCfg: params.TokenConfig,
		appCfg:   params.AppConfig,
		isDupe:   isDupe,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if !security.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeAccountInactive, inactiveAccountMessage)
	}
	if !user.IsEmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeEmailUnverified, unverifiedEmailMessage).
			WithDetails(map[string]string{"email": user.Email})
	}

	return s.issueSession(ctx, user)
}

func (s *service) issueSession(ctx context.Context, user *models.User) (*LoginResponse, error) {
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	token, err := s.mintToken(user, now)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token: token,
		User:  users.FromModel(user),
	}, nil
}

func (s *service) mintToken(user *models.User, now time.Time) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) verificationURL(token string) string {
	return fmt.Sprintf("%s/api/auth/verify-email?token=%s", strings.TrimRight(s.appCfg.BackendURL, "/"), token)
}

func (s *service) resetURL(token string) string {
	return fmt.Sprintf("%s/api/auth/reset-password?token=%s", strings.TrimRight(s.appCfg.BackendURL, "/"), token)
}
