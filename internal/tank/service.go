package tank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"github.com/vegobolt/vegobolt-backend/pkg/enums"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/redis"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
	defaultBatteryLevel = 100
)

// Service defines the telemetry behavior needed by the tank controller and
// the sensor topic consumer.
type Service interface {
	RecordReading(ctx context.Context, req RecordReadingRequest) (*ReadingDTO, error)
	Latest(ctx context.Context) (*ReadingDTO, error)
	History(ctx context.Context, limit int) ([]ReadingDTO, error)
	Alerts(ctx context.Context) ([]AlertDTO, error)
}

type repository interface {
	Create(ctx context.Context, reading *models.TankReading) (*models.TankReading, error)
	Latest(ctx context.Context) (*models.TankReading, error)
	History(ctx context.Context, limit int) ([]models.TankReading, error)
}

// readingCache is the slice of the redis client the service depends on.
type readingCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	LatestReadingKey() string
}

type service struct {
	repo  repository
	cache readingCache
	logg  *logger.Logger
	cfg   config.TankConfig
	now   func() time.Time
}

// ServiceParams bundles the dependencies required to build a tank service.
type ServiceParams struct {
	Repo   repository
	Cache  readingCache // optional, nil disables the latest-reading cache
	Logger *logger.Logger
	Config config.TankConfig
}

// NewService constructs a telemetry service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tank repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:  params.Repo,
		cache: params.Cache,
		logg:  params.Logger,
		cfg:   params.Config,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) RecordReading(ctx context.Context, req RecordReadingRequest) (*ReadingDTO, error) {
	status := req.Status
	if status == "" {
		status = "Unknown"
	}
	// tanks without a battery sensor report nothing, stored as 0
	var battery float64
	if req.BatteryLevel != nil {
		battery = *req.BatteryLevel
	}
	alert := req.Alert
	if alert == "" {
		alert = string(enums.TankAlertNormal)
	}

	reading, err := s.repo.Create(ctx, &models.TankReading{
		Status:       status,
		Level:        req.Level,
		Temperature:  req.Temperature,
		BatteryLevel: battery,
		Alert:        alert,
		RecordedAt:   s.now(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reading")
	}

	dto := FromModel(reading)
	s.cacheLatest(ctx, dto)
	return dto, nil
}

// Latest returns the freshest reading. When no telemetry has arrived yet it
// synthesizes a neutral sample so clients always have something to render.
func (s *service) Latest(ctx context.Context) (*ReadingDTO, error) {
	if cached := s.cachedLatest(ctx); cached != nil {
		return cached, nil
	}

	reading, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.syntheticLatest(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest reading")
	}

	dto := FromModel(reading)
	s.cacheLatest(ctx, dto)
	return dto, nil
}

func (s *service) History(ctx context.Context, limit int) ([]ReadingDTO, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	readings, err := s.repo.History(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reading history")
	}

	out := make([]ReadingDTO, 0, len(readings))
	for i := range readings {
		out = append(out, *FromModel(&readings[i]))
	}
	return out, nil
}

// Alerts derives active alerts from the freshest reading only. Older samples
// never contribute.
func (s *service) Alerts(ctx context.Context) ([]AlertDTO, error) {
	reading, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []AlertDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest reading")
	}
	return DeriveAlerts(FromModel(reading), s.cfg), nil
}

func (s *service) syntheticLatest() *ReadingDTO {
	return &ReadingDTO{
		Status:       "Unknown",
		Level:        0,
		Temperature:  0,
		BatteryLevel: defaultBatteryLevel,
		Alert:        string(enums.TankAlertNormal),
		RecordedAt:   s.now(),
	}
}

func (s *service) cachedLatest(ctx context.Context) *ReadingDTO {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.LatestReadingKey())
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logg.Warn(ctx, fmt.Sprintf("latest reading cache read failed: %v", err))
		}
		return nil
	}
	var dto ReadingDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil
	}
	return &dto
}

func (s *service) cacheLatest(ctx context.Context, dto *ReadingDTO) {
	if s.cache == nil || dto == nil {
		return
	}
	raw, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.LatestReadingKey(), string(raw), s.cfg.LatestCacheTTL); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("latest reading cache write failed: %v", err))
	}
}
