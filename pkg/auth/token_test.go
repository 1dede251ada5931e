package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "vegobolt-backend",
		ExpirationHours: 168,
	}
	now := time.Now().UTC()
	userID := uuid.New()

	payload := AccessTokenPayload{
		UserID:      userID,
		Email:       "user@example.com",
		DisplayName: "Test User",
		IsAdmin:     true,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if claims.DisplayName != "Test User" {
		t.Fatalf("unexpected display name %s", claims.DisplayName)
	}
	if !claims.IsAdmin {
		t.Fatal("is_admin not preserved")
	}

	// RegisteredClaims is embedded, so access fields directly.
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(cfg.Expiration())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "vegobolt-backend",
		ExpirationHours: 1,
	}
	now := time.Now()
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token+"x")
	if err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "vegobolt-backend",
		ExpirationHours: 0, // falls back to the 7 day default
	}
	now := time.Now().Add(-200 * 24 * time.Hour)
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenMissingUser(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "vegobolt-backend",
		ExpirationHours: 1,
	}

	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected missing user id error")
	}
}
