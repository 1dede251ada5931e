package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TankReading is one telemetry sample from the tank controller.
type TankReading struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status       string    `gorm:"column:status;not null"`
	Level        float64   `gorm:"column:level;not null"`
	Temperature  float64   `gorm:"column:temperature;not null"`
	BatteryLevel float64   `gorm:"column:battery_level;not null"`
	Alert        string    `gorm:"column:alert;not null;default:normal"`
	RecordedAt   time.Time `gorm:"column:recorded_at;not null;index:idx_tank_readings_recorded_at,sort:desc"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *TankReading) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	return nil
}
