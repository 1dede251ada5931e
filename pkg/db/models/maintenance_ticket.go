package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceTicket is a scheduled service visit for a machine.
type MaintenanceTicket struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_maintenance_tickets_user_id"`
	MachineID     string    `gorm:"column:machine_id;not null"`
	Location      string    `gorm:"column:location;not null"`
	Title         string    `gorm:"column:title;not null"`
	Description   string    `gorm:"column:description;not null;default:''"`
	Priority      string    `gorm:"column:priority;not null;default:Low"`
	Status        string    `gorm:"column:status;not null;default:Scheduled"`
	ScheduledDate time.Time `gorm:"column:scheduled_date;not null;index:idx_maintenance_tickets_scheduled_date,sort:desc"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID"`
}

func (t *MaintenanceTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
