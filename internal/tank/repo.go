package tank

import (
	"context"

	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes telemetry persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tank repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new reading and returns the persisted model.
func (r *Repository) Create(ctx context.Context, reading *models.TankReading) (*models.TankReading, error) {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return nil, err
	}
	return reading, nil
}

// Latest returns the freshest reading, gorm.ErrRecordNotFound when none exist.
func (r *Repository) Latest(ctx context.Context) (*models.TankReading, error) {
	var reading models.TankReading
	if err := r.db.WithContext(ctx).
		Order("recorded_at DESC").
		First(&reading).Error; err != nil {
		return nil, err
	}
	return &reading, nil
}

// History returns readings newest first, capped at limit.
func (r *Repository) History(ctx context.Context, limit int) ([]models.TankReading, error) {
	var readings []models.TankReading
	if err := r.db.WithContext(ctx).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}
