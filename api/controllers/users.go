package controllers

import (
	"net/http"

	"github.com/vegobolt/vegobolt-backend/api/middleware"
	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/api/validators"
	"github.com/vegobolt/vegobolt-backend/internal/users"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

func UserProfile(service users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		profile, err := service.GetProfile(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Profile retrieved", profile)
	}
}

func UserUpdateProfile(service users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req users.UpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := service.UpdateProfile(ctx, middleware.UserIDFromContext(ctx), req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Profile updated", profile)
	}
}

func UserDeleteAccount(service users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := service.DeleteAccount(ctx, middleware.UserIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Account deleted", nil)
	}
}
