package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vegobolt/vegobolt-backend/api/middleware"
	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/api/validators"
	"github.com/vegobolt/vegobolt-backend/internal/maintenance"
	"github.com/vegobolt/vegobolt-backend/pkg/enums"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

func MaintenanceCreate(service maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req maintenance.CreateTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ticket, err := service.Create(ctx, middleware.UserIDFromContext(ctx), req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Maintenance ticket created", ticket)
	}
}

func MaintenanceList(service maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tickets, err := service.List(ctx, r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Maintenance tickets retrieved", tickets)
	}
}

func MaintenanceUpdate(service maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID, err := ticketIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req maintenance.UpdateTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(ctx)
		ticket, err := service.Update(ctx, middleware.UserIDFromContext(ctx), claims != nil && claims.IsAdmin, ticketID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Maintenance ticket updated", ticket)
	}
}

func MaintenanceDelete(service maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID, err := ticketIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(ctx)
		if err := service.Delete(ctx, middleware.UserIDFromContext(ctx), claims != nil && claims.IsAdmin, ticketID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Maintenance ticket deleted", nil)
	}
}

// MaintenanceResolve is a shortcut for the common status flip from the app's
// ticket list, equivalent to an update with status Resolved.
func MaintenanceResolve(service maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID, err := ticketIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resolved := string(enums.MaintenanceStatusResolved)
		claims := middleware.ClaimsFromContext(ctx)
		ticket, err := service.Update(ctx, middleware.UserIDFromContext(ctx), claims != nil && claims.IsAdmin, ticketID, maintenance.UpdateTicketRequest{Status: &resolved})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Maintenance ticket resolved", ticket)
	}
}

func ticketIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "ticketID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ticket id")
	}
	return id, nil
}
