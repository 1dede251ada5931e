package tank

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/redis"
	"gorm.io/gorm"
)

type stubRepo struct {
	readings []models.TankReading
}

func (r *stubRepo) Create(_ context.Context, reading *models.TankReading) (*models.TankReading, error) {
	reading.ID = uuid.New()
	r.readings = append([]models.TankReading{*reading}, r.readings...)
	return reading, nil
}

func (r *stubRepo) Latest(context.Context) (*models.TankReading, error) {
	if len(r.readings) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &r.readings[0], nil
}

func (r *stubRepo) History(_ context.Context, limit int) ([]models.TankReading, error) {
	if limit > len(r.readings) {
		limit = len(r.readings)
	}
	return r.readings[:limit], nil
}

type stubCache struct {
	values map[string]string
}

func (c *stubCache) Get(_ context.Context, key string) (string, error) {
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", redis.ErrCacheMiss
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.values == nil {
		c.values = map[string]string{}
	}
	c.values[key] = value.(string)
	return nil
}

func (c *stubCache) LatestReadingKey() string { return "vb:cache:tank:latest" }

var testTankConfig = config.TankConfig{
	MachineID:      "VB-0001",
	Location:       "Barangay 171",
	LatestCacheTTL: 10 * time.Second,
}

func buildTestService(t *testing.T, repo *stubRepo, cache readingCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Cache:  cache,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Config: testTankConfig,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestLatestSyntheticDefault(t *testing.T) {
	svc := buildTestService(t, &stubRepo{}, nil)

	latest, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Status != "Unknown" || latest.Level != 0 || latest.Temperature != 0 {
		t.Fatalf("unexpected synthetic reading %+v", latest)
	}
	if latest.BatteryLevel != 100 || latest.Alert != "normal" {
		t.Fatalf("unexpected synthetic defaults %+v", latest)
	}
}

func TestRecordReadingDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := buildTestService(t, repo, nil)

	dto, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		Status:      "Filling",
		Level:       42,
		Temperature: 31.5,
	})
	if err != nil {
		t.Fatalf("record reading: %v", err)
	}
	if dto.BatteryLevel != 0 {
		t.Fatalf("missing battery should be stored as 0, got %v", dto.BatteryLevel)
	}
	if dto.Alert != "normal" {
		t.Fatalf("alert should default to normal, got %q", dto.Alert)
	}
	if dto.RecordedAt.IsZero() {
		t.Fatal("recorded_at must be stamped")
	}
}

func TestRecordReadingMissingStatus(t *testing.T) {
	repo := &stubRepo{}
	svc := buildTestService(t, repo, nil)

	dto, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		Level:       10,
		Temperature: 28,
	})
	if err != nil {
		t.Fatalf("record reading: %v", err)
	}
	if dto.Status != "Unknown" {
		t.Fatalf("missing status should default to Unknown, got %q", dto.Status)
	}
}

func TestLatestUsesCache(t *testing.T) {
	repo := &stubRepo{}
	cache := &stubCache{}
	svc := buildTestService(t, repo, cache)

	if _, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		Status: "Filling", Level: 55, Temperature: 30,
	}); err != nil {
		t.Fatalf("record reading: %v", err)
	}

	// drain the repo so only the cache can answer
	repo.readings = nil

	latest, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Level != 55 {
		t.Fatalf("expected cached reading, got %+v", latest)
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	repo := &stubRepo{}
	for i := 0; i < 150; i++ {
		repo.readings = append(repo.readings, models.TankReading{
			ID: uuid.New(), Status: "Filling", RecordedAt: time.Now(),
		})
	}
	svc := buildTestService(t, repo, nil)

	history, err := svc.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 100 {
		t.Fatalf("expected default limit of 100, got %d", len(history))
	}
}

func TestAlertsOverheatingByTemperature(t *testing.T) {
	repo := &stubRepo{readings: []models.TankReading{{
		ID: uuid.New(), Status: "Filling", Level: 10, Temperature: 57, Alert: "normal",
		RecordedAt: time.Now(),
	}}}
	svc := buildTestService(t, repo, nil)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != "overheating" {
		t.Fatalf("expected single overheating alert, got %+v", alerts)
	}
	if alerts[0].MachineID != "VB-0001" || alerts[0].Location != "Barangay 171" {
		t.Fatalf("alert not stamped with machine metadata: %+v", alerts[0])
	}
}

func TestAlertsOverheatingBySelfReport(t *testing.T) {
	repo := &stubRepo{readings: []models.TankReading{{
		ID: uuid.New(), Status: "Filling", Level: 10, Temperature: 30, Alert: "overheating",
		RecordedAt: time.Now(),
	}}}
	svc := buildTestService(t, repo, nil)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != "overheating" {
		t.Fatalf("expected overheating alert from self report, got %+v", alerts)
	}
}

func TestAlertsTankFull(t *testing.T) {
	repo := &stubRepo{readings: []models.TankReading{{
		ID: uuid.New(), Status: "Full", Level: 95, Temperature: 30, Alert: "normal",
		RecordedAt: time.Now(),
	}}}
	svc := buildTestService(t, repo, nil)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != "tank-full" {
		t.Fatalf("expected tank-full alert, got %+v", alerts)
	}
}

func TestAlertsBothConditions(t *testing.T) {
	repo := &stubRepo{readings: []models.TankReading{{
		ID: uuid.New(), Status: "Full", Level: 92, Temperature: 60, Alert: "normal",
		RecordedAt: time.Now(),
	}}}
	svc := buildTestService(t, repo, nil)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected both alerts, got %+v", alerts)
	}
}

func TestAlertsOnlyLatestReadingCounts(t *testing.T) {
	repo := &stubRepo{readings: []models.TankReading{
		{ID: uuid.New(), Status: "Filling", Level: 20, Temperature: 25, Alert: "normal", RecordedAt: time.Now()},
		{ID: uuid.New(), Status: "Full", Level: 99, Temperature: 80, Alert: "overheating", RecordedAt: time.Now().Add(-time.Hour)},
	}}
	svc := buildTestService(t, repo, nil)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("older readings must not raise alerts, got %+v", alerts)
	}
}

func TestAlertsNoReadings(t *testing.T) {
	svc := buildTestService(t, &stubRepo{}, nil)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("no telemetry must mean no alerts, got %+v", alerts)
	}
}
