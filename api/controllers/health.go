package controllers

import (
	"net/http"

	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, "ok", map[string]string{
			"status":      "ok",
			"environment": cfg.App.Env,
		})
	}
}

// HealthReady reports whether the API can serve traffic. Cache and broker
// are optional so only the database gates readiness.
func HealthReady(logg *logger.Logger, database db.Pinger, cache db.Pinger, broker db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		checks := map[string]string{}

		if err := database.Ping(ctx); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}
		checks["database"] = "up"

		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				checks["cache"] = "down"
				if logg != nil {
					logg.Warn(ctx, "health.cache_unreachable")
				}
			} else {
				checks["cache"] = "up"
			}
		}

		if broker != nil {
			if err := broker.Ping(ctx); err != nil {
				checks["mqtt"] = "down"
				if logg != nil {
					logg.Warn(ctx, "health.broker_unreachable")
				}
			} else {
				checks["mqtt"] = "up"
			}
		}

		responses.WriteSuccess(w, "ready", checks)
	}
}
