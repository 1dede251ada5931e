package controllers

import (
	"net/http"

	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/api/validators"
	"github.com/vegobolt/vegobolt-backend/internal/tank"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

func TankLatest(service tank.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		reading, err := service.Latest(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Latest reading retrieved", reading)
	}
}

func TankHistory(service tank.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.QueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		readings, err := service.History(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Reading history retrieved", readings)
	}
}

func TankAlerts(service tank.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		alerts, err := service.Alerts(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Alerts retrieved", alerts)
	}
}

// TankRecordReading ingests a telemetry sample over HTTP. The same payload
// also arrives over MQTT on the sensor topic.
func TankRecordReading(service tank.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req tank.RecordReadingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		reading, err := service.RecordReading(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Reading recorded", reading)
	}
}
