package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/db/models"
	"github.com/vegobolt/vegobolt-backend/pkg/enums"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"gorm.io/gorm"
)

const ticketNotFoundMessage = "maintenance ticket not found"

// Service defines the behavior needed by the maintenance controller.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateTicketRequest) (*TicketDTO, error)
	List(ctx context.Context, status string) ([]TicketDTO, error)
	Update(ctx context.Context, userID uuid.UUID, isAdmin bool, ticketID uuid.UUID, req UpdateTicketRequest) (*TicketDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, ticketID uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, ticket *models.MaintenanceTicket) (*models.MaintenanceTicket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceTicket, error)
	List(ctx context.Context, status string) ([]models.MaintenanceTicket, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.MaintenanceTicket, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    repository
	tankCfg config.TankConfig
}

// NewService constructs a maintenance service. Tickets without an explicit
// machine fall back to the configured machine metadata.
func NewService(repo repository, tankCfg config.TankConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("maintenance repository is required")
	}
	return &service{repo: repo, tankCfg: tankCfg}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateTicketRequest) (*TicketDTO, error) {
	priority := req.Priority
	if priority == "" {
		priority = string(enums.MaintenancePriorityLow)
	}
	machineID := req.MachineID
	if machineID == "" {
		machineID = s.tankCfg.MachineID
	}
	location := req.Location
	if location == "" {
		location = s.tankCfg.Location
	}

	ticket, err := s.repo.Create(ctx, &models.MaintenanceTicket{
		UserID:        userID,
		MachineID:     machineID,
		Location:      location,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      priority,
		Status:        string(enums.MaintenanceStatusScheduled),
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create ticket")
	}
	return FromModel(ticket), nil
}

// List returns every ticket, optionally filtered by status. The tank is a
// shared installation, so scheduled work is visible to all users; ownership
// is enforced on mutation only.
func (s *service) List(ctx context.Context, status string) ([]TicketDTO, error) {
	if status != "" && !enums.MaintenanceStatus(status).IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter %q", status))
	}

	tickets, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tickets")
	}

	out := make([]TicketDTO, 0, len(tickets))
	for i := range tickets {
		out = append(out, *FromModel(&tickets[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, isAdmin bool, ticketID uuid.UUID, req UpdateTicketRequest) (*TicketDTO, error) {
	if _, err := s.authorize(ctx, userID, isAdmin, ticketID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.ScheduledDate != nil {
		updates["scheduled_date"] = *req.ScheduledDate
	}

	ticket, err := s.repo.Update(ctx, ticketID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update ticket")
	}
	return FromModel(ticket), nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, ticketID uuid.UUID) error {
	if _, err := s.authorize(ctx, userID, isAdmin, ticketID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ticketID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete ticket")
	}
	return nil
}

// authorize loads the ticket and enforces ownership. Admins can touch any
// ticket; everyone else only their own.
func (s *service) authorize(ctx context.Context, userID uuid.UUID, isAdmin bool, ticketID uuid.UUID) (*models.MaintenanceTicket, error) {
	ticket, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, ticketNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup ticket")
	}
	if !isAdmin && ticket.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not own this ticket")
	}
	return ticket, nil
}
