package tank

import (
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
)

// ReadingDTO is the transport shape for one telemetry sample.
type ReadingDTO struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	Level        float64   `json:"level"`
	Temperature  float64   `json:"temperature"`
	BatteryLevel float64   `json:"battery_level"`
	Alert        string    `json:"alert"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// RecordReadingRequest is the validated body for inbound telemetry, whether
// it arrives over HTTP or the sensor topic.
type RecordReadingRequest struct {
	Status       string   `json:"status" validate:"omitempty,max=50"`
	Level        float64  `json:"level" validate:"gte=0,lte=100"`
	Temperature  float64  `json:"temperature" validate:"gte=-40,lte=150"`
	BatteryLevel *float64 `json:"battery_level" validate:"omitempty,gte=0,lte=100"`
	Alert        string   `json:"alert" validate:"omitempty,max=50"`
}

// AlertDTO describes one active alert derived from the freshest sample.
type AlertDTO struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	MachineID string    `json:"machine_id"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

func FromModel(r *models.TankReading) *ReadingDTO {
	if r == nil {
		return nil
	}
	return &ReadingDTO{
		ID:           r.ID,
		Status:       r.Status,
		Level:        r.Level,
		Temperature:  r.Temperature,
		BatteryLevel: r.BatteryLevel,
		Alert:        r.Alert,
		RecordedAt:   r.RecordedAt,
	}
}
