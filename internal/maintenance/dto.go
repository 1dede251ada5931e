package maintenance

import (
	"time"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
)

// TicketDTO is the transport shape for a maintenance ticket.
type TicketDTO struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	MachineID     string    `json:"machine_id"`
	Location      string    `json:"location"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	ScheduledDate time.Time `json:"scheduled_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateTicketRequest is the validated body for POST /api/maintenance.
type CreateTicketRequest struct {
	MachineID     string    `json:"machine_id" validate:"omitempty,max=50"`
	Location      string    `json:"location" validate:"omitempty,max=200"`
	Title         string    `json:"title" validate:"required,min=1,max=200"`
	Description   string    `json:"description" validate:"omitempty,max=2000"`
	Priority      string    `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

// UpdateTicketRequest carries the mutable ticket fields. Nil means unchanged.
type UpdateTicketRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description" validate:"omitempty,max=2000"`
	Priority      *string    `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status        *string    `json:"status" validate:"omitempty,oneof=Scheduled Resolved Canceled"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

func FromModel(t *models.MaintenanceTicket) *TicketDTO {
	if t == nil {
		return nil
	}
	return &TicketDTO{
		ID:            t.ID,
		UserID:        t.UserID,
		MachineID:     t.MachineID,
		Location:      t.Location,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      t.Priority,
		Status:        t.Status,
		ScheduledDate: t.ScheduledDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
