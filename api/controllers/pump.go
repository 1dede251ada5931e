package controllers

import (
	"net/http"

	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/api/validators"
	"github.com/vegobolt/vegobolt-backend/internal/pump"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

const pumpCommandSourceAPI = "api"

func PumpTurnOn(service pump.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status, err := service.TurnOn(ctx, pumpCommandSourceAPI)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pump turned on", status)
	}
}

func PumpTurnOff(service pump.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status, err := service.TurnOff(ctx, pumpCommandSourceAPI)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pump turned off", status)
	}
}

func PumpToggle(service pump.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status, err := service.Toggle(ctx, pumpCommandSourceAPI)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pump toggled", status)
	}
}

func PumpStatus(service pump.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status, err := service.Status(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pump status retrieved", status)
	}
}

func PumpEnergy(service pump.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		energy, err := service.Energy(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pump energy usage retrieved", energy)
	}
}

type pumpControlRequest struct {
	Command string `json:"command" validate:"required"`
}

func PumpControl(service pump.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req pumpControlRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := service.Control(ctx, req.Command, pumpCommandSourceAPI)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pump command applied", status)
	}
}
