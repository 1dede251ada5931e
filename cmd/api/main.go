package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vegobolt/vegobolt-backend/api/middleware"
	"github.com/vegobolt/vegobolt-backend/api/routes"
	"github.com/vegobolt/vegobolt-backend/api/validators"
	"github.com/vegobolt/vegobolt-backend/internal/auth"
	"github.com/vegobolt/vegobolt-backend/internal/maintenance"
	"github.com/vegobolt/vegobolt-backend/internal/pump"
	"github.com/vegobolt/vegobolt-backend/internal/tank"
	"github.com/vegobolt/vegobolt-backend/internal/users"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db"
	"github.com/vegobolt/vegobolt-backend/pkg/googleauth"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/mailer"
	"github.com/vegobolt/vegobolt-backend/pkg/metrics"
	"github.com/vegobolt/vegobolt-backend/pkg/migrate"
	"github.com/vegobolt/vegobolt-backend/pkg/mqtt"
	"github.com/vegobolt/vegobolt-backend/pkg/redis"
	"github.com/vegobolt/vegobolt-backend/pkg/tapo"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "redis unavailable, caching and rate limits disabled")
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	bridgeMetrics := metrics.NewBridgeMetrics(registry)

	mailSender, err := mailer.New(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	var googleVerifier googleauth.Verifier
	if audiences := cfg.Google.Audiences(); len(audiences) > 0 {
		googleVerifier, err = googleauth.New(audiences)
		if err != nil {
			logg.Error(context.Background(), "failed to create google verifier", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "google client ids not set, google sign-in disabled")
	}

	var device tapo.Device
	if cfg.Tapo.Configured() {
		device, err = tapo.NewClient(cfg.Tapo, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create tapo client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "tapo plug not configured, pump control degraded")
		device = tapo.Offline()
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:          userRepo,
		Mailer:            mailSender,
		GoogleVerifier:    googleVerifier,
		Logger:            logg,
		JWTConfig:         cfg.JWT,
		TokenConfig:       cfg.AuthTokens,
		AppConfig:         cfg.App,
		IsUniqueViolation: func(err error) bool { return db.IsUniqueViolation(err, "idx_users_email") },
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	tankParams := tank.ServiceParams{
		Repo:   tank.NewRepository(dbClient.DB()),
		Logger: logg,
		Config: cfg.Tank,
	}
	if redisClient != nil {
		tankParams.Cache = redisClient
	}
	tankService, err := tank.NewService(tankParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create tank service", err)
		os.Exit(1)
	}

	mqttClient := mqtt.New(cfg.MQTT, logg, bridgeMetrics)

	pumpService, err := pump.NewService(pump.ServiceParams{
		Device:    device,
		Publisher: mqttClient,
		Logger:    logg,
		MQTT:      cfg.MQTT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pump service", err)
		os.Exit(1)
	}

	maintenanceService, err := maintenance.NewService(maintenance.NewRepository(dbClient.DB()), cfg.Tank)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance service", err)
		os.Exit(1)
	}

	mqttClient.Handle(cfg.MQTT.SensorDataTopic, tank.HandleSensorMessage(tankService, validators.Validator()))
	mqttClient.Handle(cfg.MQTT.PumpControlTopic, pump.HandleControlMessage(pumpService))
	// Valve hardware is not installed yet, so commands are only recorded.
	mqttClient.Handle(cfg.MQTT.ValveControlTopic, func(ctx context.Context, topic string, payload []byte) error {
		logg.Info(logg.WithField(ctx, "payload", string(payload)), "valve.control_received")
		return nil
	})
	if err := mqttClient.Connect(context.Background()); err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "mqtt broker unreachable, will keep retrying")
	}
	defer mqttClient.Close()

	var cachePinger db.Pinger
	var limiter middleware.FixedWindowLimiter
	if redisClient != nil {
		cachePinger = redisClient
		limiter = redisClient
	}

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		cachePinger,
		mqttClient,
		limiter,
		userRepo,
		authService,
		usersService,
		tankService,
		pumpService,
		maintenanceService,
		httpMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
