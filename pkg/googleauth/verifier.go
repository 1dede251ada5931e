package googleauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// ErrNoAudiences signals that no Google client IDs were configured.
var ErrNoAudiences = errors.New("no google client ids configured")

// Identity carries the verified claims the auth service needs.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Name          string
	Picture       string
}

// Verifier validates Google ID tokens against the configured audiences.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

type verifier struct {
	audiences []string
}

// New builds a verifier for the given client IDs (Android, iOS, Web).
func New(audiences []string) (Verifier, error) {
	if len(audiences) == 0 {
		return nil, ErrNoAudiences
	}
	return &verifier{audiences: audiences}, nil
}

// Verify tries each audience in turn. Mobile and web clients mint tokens for
// different client IDs, so a single-audience check would reject valid logins.
func (v *verifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	var lastErr error
	for _, audience := range v.audiences {
		payload, err := idtoken.Validate(ctx, rawToken, audience)
		if err != nil {
			lastErr = err
			continue
		}
		return identityFromPayload(payload)
	}
	return nil, fmt.Errorf("google token rejected for all audiences: %w", lastErr)
}

func identityFromPayload(payload *idtoken.Payload) (*Identity, error) {
	email, _ := payload.Claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return nil, errors.New("google token has no email claim")
	}

	identity := &Identity{
		Subject: payload.Subject,
		Email:   strings.ToLower(strings.TrimSpace(email)),
	}
	// the claim arrives as a bool, but some issuers stringify it
	switch v := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = v
	case string:
		identity.EmailVerified = v == "true"
	}
	if v, ok := payload.Claims["given_name"].(string); ok {
		identity.GivenName = v
	}
	if v, ok := payload.Claims["family_name"].(string); ok {
		identity.FamilyName = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		identity.Name = v
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		identity.Picture = v
	}
	return identity, nil
}
