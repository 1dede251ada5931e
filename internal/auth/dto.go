package auth

import "github.com/vegobolt/vegobolt-backend/internal/users"

// RegisterRequest is the validated body for POST /api/auth/register.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	FirstName string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string  `json:"last_name" validate:"required,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
}

// RegisterResponse carries the freshly created account and a session token.
// The token is usable right away even though password login stays gated on
// email verification.
type RegisterResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// LoginRequest is the validated body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the authenticated user.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// GoogleLoginRequest is the validated body for POST /api/auth/google.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// ResendVerificationRequest asks for a fresh verification email.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordResetRequest is the validated body for POST /api/auth/password-reset.
type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the validated body for POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
