package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vegobolt/vegobolt-backend/api/middleware"
	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/api/validators"
	"github.com/vegobolt/vegobolt-backend/internal/auth"
	"github.com/vegobolt/vegobolt-backend/internal/users"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

func AuthRegister(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := service.Register(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Registration successful. Please check your email to verify your account.", resp)
	}
}

func AuthLogin(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := service.Login(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Login successful", resp)
	}
}

func AuthGoogleLogin(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.GoogleLoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := service.GoogleLogin(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Login successful", resp)
	}
}

// AuthVerifyEmail handles the link clicked from the verification email. It
// renders an HTML result page rather than JSON because the visitor is a
// browser, not the app.
func AuthVerifyEmail(service auth.Service, pages *AuthPages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token := tokenFromRequest(r)

		if err := service.VerifyEmail(ctx, token); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "reason", err.Error()), "auth.verify_email.rejected")
			}
			pages.RenderVerifyResult(w, false)
			return
		}

		pages.RenderVerifyResult(w, true)
	}
}

func AuthResendVerification(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.ResendVerificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := service.ResendVerification(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Verification email sent. Please check your inbox.", nil)
	}
}

func AuthRequestPasswordReset(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.RequestPasswordResetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := service.RequestPasswordReset(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "If an account exists for that email, a reset link has been sent.", nil)
	}
}

// AuthResetPasswordForm serves the browser-facing form linked from the reset
// email. Submission posts back to the JSON endpoint.
func AuthResetPasswordForm(pages *AuthPages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages.RenderResetForm(w, tokenFromRequest(r))
	}
}

// tokenFromRequest accepts the token either as a path segment or a query
// parameter, since older app builds link both forms.
func tokenFromRequest(r *http.Request) string {
	if token := chi.URLParam(r, "token"); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// AuthVerifyToken lets mobile clients check whether a stored token is still
// valid. The auth middleware has already rejected bad tokens by the time this
// runs, so all that is left is to echo the current profile.
func AuthVerifyToken(service users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		profile, err := service.GetProfile(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Token is valid", profile)
	}
}

// AuthLogout acknowledges a logout. Sessions are stateless JWTs, so the client
// discards the token and the server only confirms.
func AuthLogout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if logg != nil {
			logg.Info(ctx, "auth.logout")
		}

		responses.WriteSuccess(w, "Logged out successfully", nil)
	}
}

func AuthResetPassword(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.ResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := service.ResetPassword(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Password has been reset. You can now log in with your new password.", nil)
	}
}
