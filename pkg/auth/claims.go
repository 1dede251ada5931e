package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	IsAdmin     bool
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. IsAdmin is
// embedded so admin routes never need a DB lookup to authorize.
type AccessTokenClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	jwt.RegisteredClaims
}
