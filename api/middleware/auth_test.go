package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/vegobolt/vegobolt-backend/pkg/auth"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
)

type stubUserFinder struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserFinder) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testAuthJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "middleware-test-secret",
		Issuer:          "vegobolt-backend",
		ExpirationHours: 1,
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, isAdmin bool) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      userID,
		Email:       "tester@example.com",
		DisplayName: "Tester",
		IsAdmin:     isAdmin,
	})
	require.NoError(t, err)
	return token
}

func authedHandler(t *testing.T, gotUserID *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticateMissingToken(t *testing.T) {
	mw := Authenticate(testAuthJWTConfig(), &stubUserFinder{}, nil)

	var gotUserID uuid.UUID
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)

	mw(authedHandler(t, &gotUserID)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access token required")
}

func TestAuthenticateInvalidToken(t *testing.T) {
	mw := Authenticate(testAuthJWTConfig(), &stubUserFinder{}, nil)

	var gotUserID uuid.UUID
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	mw(authedHandler(t, &gotUserID)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}

func TestAuthenticateUserDeleted(t *testing.T) {
	cfg := testAuthJWTConfig()
	userID := uuid.New()
	mw := Authenticate(cfg, &stubUserFinder{}, nil)

	var gotUserID uuid.UUID
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, cfg, userID, false))

	mw(authedHandler(t, &gotUserID)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	cfg := testAuthJWTConfig()
	userID := uuid.New()
	finder := &stubUserFinder{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, IsActive: false},
	}}
	mw := Authenticate(cfg, finder, nil)

	var gotUserID uuid.UUID
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, cfg, userID, false))

	mw(authedHandler(t, &gotUserID)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive")
}

func TestAuthenticateSeedsContext(t *testing.T) {
	cfg := testAuthJWTConfig()
	userID := uuid.New()
	finder := &stubUserFinder{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, IsActive: true},
	}}
	mw := Authenticate(cfg, finder, nil)

	var gotUserID uuid.UUID
	var gotClaims *pkgAuth.AccessTokenClaims
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, cfg, userID, true))

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, gotUserID)
	require.NotNil(t, gotClaims)
	assert.True(t, gotClaims.IsAdmin)
	assert.Equal(t, "tester@example.com", gotClaims.Email)
}

func TestRequireAdmin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mw := RequireAdmin(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req = req.WithContext(WithClaims(req.Context(), &pkgAuth.AccessTokenClaims{IsAdmin: false}))
	mw(handler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req = req.WithContext(WithClaims(req.Context(), &pkgAuth.AccessTokenClaims{IsAdmin: true}))
	mw(handler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
