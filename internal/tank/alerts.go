package tank

import (
	"fmt"

	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/enums"
)

// Alert thresholds for the derivation rules. A reading trips an alert either
// by self-reporting it or by crossing the threshold.
const (
	overheatingTempThreshold = 50.0
	tankFullLevelThreshold   = 90.0
	tankFullStatus           = "Full"
)

// DeriveAlerts computes the active alerts for the freshest reading. A nil
// reading (no telemetry yet) produces no alerts.
func DeriveAlerts(reading *ReadingDTO, cfg config.TankConfig) []AlertDTO {
	alerts := []AlertDTO{}
	if reading == nil {
		return alerts
	}

	if reading.Alert == string(enums.TankAlertOverheating) || reading.Temperature > overheatingTempThreshold {
		alerts = append(alerts, AlertDTO{
			Type:      string(enums.TankAlertOverheating),
			Message:   fmt.Sprintf("Machine temperature is %.1f°C", reading.Temperature),
			MachineID: cfg.MachineID,
			Location:  cfg.Location,
			Timestamp: reading.RecordedAt,
		})
	}

	if reading.Status == tankFullStatus || reading.Level >= tankFullLevelThreshold {
		alerts = append(alerts, AlertDTO{
			Type:      string(enums.TankAlertTankFull),
			Message:   fmt.Sprintf("Tank level is at %.0f%%", reading.Level),
			MachineID: cfg.MachineID,
			Location:  cfg.Location,
			Timestamp: reading.RecordedAt,
		})
	}

	return alerts
}
