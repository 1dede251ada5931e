package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegobolt/vegobolt-backend/internal/auth"
	"github.com/vegobolt/vegobolt-backend/internal/users"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
)

type stubAuthService struct {
	registerResp *auth.RegisterResponse
	registerErr  error
	loginResp    *auth.LoginResponse
	loginErr     error
	verifyErr    error
	resendErr    error

	gotRegister auth.RegisterRequest
	gotLogin    auth.LoginRequest
	gotToken    string
}

func (s *stubAuthService) Register(_ context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	s.gotRegister = req
	return s.registerResp, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.gotLogin = req
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) GoogleLogin(_ context.Context, _ auth.GoogleLoginRequest) (*auth.LoginResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) VerifyEmail(_ context.Context, token string) error {
	s.gotToken = token
	return s.verifyErr
}

func (s *stubAuthService) ResendVerification(_ context.Context, _ auth.ResendVerificationRequest) error {
	return s.resendErr
}

func (s *stubAuthService) RequestPasswordReset(_ context.Context, _ auth.RequestPasswordResetRequest) error {
	return nil
}

func (s *stubAuthService) ResetPassword(_ context.Context, _ auth.ResetPasswordRequest) error {
	return nil
}

func testPages() *AuthPages {
	return NewAuthPages("http://localhost:3000")
}

func TestRegisterReturnsCreated(t *testing.T) {
	svc := &stubAuthService{registerResp: &auth.RegisterResponse{User: &users.UserDTO{Email: "a@b.c"}}}
	handler := AuthRegister(svc, nil)

	body := `{"email":"a@b.c","password":"secret1","first_name":"Ana","last_name":"Reyes"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a@b.c", svc.gotRegister.Email)

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Contains(t, envelope.Message, "verify")
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	handler := AuthRegister(&stubAuthService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(pkgerrors.CodeValidation))
}

func TestLoginPassesThroughServiceError(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password")}
	handler := AuthLogin(svc, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLoginReturnsToken(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{Token: "jwt-token", User: &users.UserDTO{Email: "a@b.c"}}}
	handler := AuthLogin(svc, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jwt-token")
}

func TestVerifyEmailRendersHTMLResult(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthVerifyEmail(svc, testPages(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token=abc123", nil)

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", svc.gotToken)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Email verified")
}

func TestVerifyEmailRendersFailurePage(t *testing.T) {
	svc := &stubAuthService{verifyErr: pkgerrors.New(pkgerrors.CodeInvalidToken, "Invalid or expired verification token")}
	handler := AuthVerifyEmail(svc, testPages(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token=stale", nil)

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification failed")
}

func TestVerifyEmailAcceptsPathToken(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthVerifyEmail(svc, testPages(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email/path-token", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("token", "path-token")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "path-token", svc.gotToken)
}

func TestVerifyTokenReturnsProfile(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{profile: &users.UserDTO{ID: userID, Email: "owner@example.com"}}
	handler := AuthVerifyToken(svc, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil), userID, false)

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, svc.gotUserID)
	assert.Contains(t, rec.Body.String(), "Token is valid")
}

func TestLogoutAcknowledges(t *testing.T) {
	handler := AuthLogout(nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged out successfully")
}

func TestResetPasswordFormEmbedsToken(t *testing.T) {
	handler := AuthResetPasswordForm(testPages())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/reset-password?token=tok-42", nil)

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tok-42")
}

func TestResendVerification(t *testing.T) {
	handler := AuthResendVerification(&stubAuthService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification", strings.NewReader(`{"email":"new@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification email sent")
}

func TestResendVerificationUnknownEmail(t *testing.T) {
	handler := AuthResendVerification(&stubAuthService{
		resendErr: pkgerrors.New(pkgerrors.CodeNotFound, "No account found for that email"),
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification", strings.NewReader(`{"email":"ghost@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
