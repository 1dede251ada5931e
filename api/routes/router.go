package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vegobolt/vegobolt-backend/api/controllers"
	"github.com/vegobolt/vegobolt-backend/api/middleware"
	"github.com/vegobolt/vegobolt-backend/internal/auth"
	"github.com/vegobolt/vegobolt-backend/internal/maintenance"
	"github.com/vegobolt/vegobolt-backend/internal/pump"
	"github.com/vegobolt/vegobolt-backend/internal/tank"
	"github.com/vegobolt/vegobolt-backend/internal/users"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cacheP db.Pinger,
	brokerP db.Pinger,
	limiter middleware.FixedWindowLimiter,
	userFinder middleware.UserFinder,
	authService auth.Service,
	usersService users.Service,
	tankService tank.Service,
	pumpService pump.Service,
	maintenanceService maintenance.Service,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.FrontendURL),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	pages := controllers.NewAuthPages(cfg.App.FrontendURL)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(logg, dbP, cacheP, brokerP))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(limiter, registerPolicy, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(limiter, loginPolicy, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(limiter, loginPolicy, logg)).Post("/google", controllers.AuthGoogleLogin(authService, logg))
		r.Get("/verify-email", controllers.AuthVerifyEmail(authService, pages, logg))
		r.Get("/verify-email/{token}", controllers.AuthVerifyEmail(authService, pages, logg))
		r.With(middleware.AuthRateLimit(limiter, registerPolicy, logg)).Post("/resend-verification", controllers.AuthResendVerification(authService, logg))
		r.With(middleware.AuthRateLimit(limiter, registerPolicy, logg)).Post("/password-reset", controllers.AuthRequestPasswordReset(authService, logg))
		r.Get("/reset-password", controllers.AuthResetPasswordForm(pages))
		r.Get("/reset-password/{token}", controllers.AuthResetPasswordForm(pages))
		r.Post("/reset-password", controllers.AuthResetPassword(authService, logg))

		// Bearer endpoints live here because this subtree shadows the
		// authenticated /api mount for any /api/auth path.
		authed := r.With(middleware.Authenticate(cfg.JWT, userFinder, logg))
		authed.Get("/verify", controllers.AuthVerifyToken(usersService, logg))
		authed.Get("/profile", controllers.UserProfile(usersService, logg))
		authed.Post("/logout", controllers.AuthLogout(logg))
	})

	r.Get("/api/config/backend-url", controllers.ConfigBackendURL(cfg.App.BackendURL))

	// The tank surface stays open so the device firmware can push readings
	// and kiosks can poll without accounts, matching the MQTT path.
	r.Route("/api/tank", func(r chi.Router) {
		r.Get("/status", controllers.TankLatest(tankService, logg))
		r.Post("/status", controllers.TankRecordReading(tankService, logg))
		r.Get("/history", controllers.TankHistory(tankService, logg))
		r.Get("/alerts", controllers.TankAlerts(tankService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWT, userFinder, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/profile", controllers.UserProfile(usersService, logg))
			r.Put("/profile", controllers.UserUpdateProfile(usersService, logg))
			r.Delete("/account", controllers.UserDeleteAccount(usersService, logg))
		})

		r.Route("/pump", func(r chi.Router) {
			r.Post("/on", controllers.PumpTurnOn(pumpService, logg))
			r.Post("/off", controllers.PumpTurnOff(pumpService, logg))
			r.Post("/toggle", controllers.PumpToggle(pumpService, logg))
			r.Get("/status", controllers.PumpStatus(pumpService, logg))
			r.Get("/energy", controllers.PumpEnergy(pumpService, logg))
			r.Post("/control", controllers.PumpControl(pumpService, logg))
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/", controllers.MaintenanceCreate(maintenanceService, logg))
			r.Get("/", controllers.MaintenanceList(maintenanceService, logg))
			r.Put("/{ticketID}", controllers.MaintenanceUpdate(maintenanceService, logg))
			r.Post("/{ticketID}/resolve", controllers.MaintenanceResolve(maintenanceService, logg))
			r.Delete("/{ticketID}", controllers.MaintenanceDelete(maintenanceService, logg))
		})
	})

	return r
}
