package maintenance

import (
	"context"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes maintenance ticket persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a maintenance repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new ticket and returns the persisted model.
func (r *Repository) Create(ctx context.Context, ticket *models.MaintenanceTicket) (*models.MaintenanceTicket, error) {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

// FindByID loads one ticket by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List returns all tickets newest scheduled first, optionally filtered by
// status.
func (r *Repository) List(ctx context.Context, status string) ([]models.MaintenanceTicket, error) {
	query := r.db.WithContext(ctx).
		Order("scheduled_date DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.MaintenanceTicket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// Update applies the given column updates and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.MaintenanceTicket, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&models.MaintenanceTicket{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the ticket.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MaintenanceTicket{}, "id = ?", id).Error
}
