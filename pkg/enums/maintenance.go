package enums

import "fmt"

// MaintenancePriority orders tickets by urgency.
type MaintenancePriority string

const (
	MaintenancePriorityLow    MaintenancePriority = "Low"
	MaintenancePriorityMedium MaintenancePriority = "Medium"
	MaintenancePriorityHigh   MaintenancePriority = "High"
)

var validMaintenancePriorities = []MaintenancePriority{
	MaintenancePriorityLow,
	MaintenancePriorityMedium,
	MaintenancePriorityHigh,
}

// IsValid checks whether the given priority matches the canonical enum.
func (p MaintenancePriority) IsValid() bool {
	for _, candidate := range validMaintenancePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseMaintenancePriority converts raw strings into MaintenancePriority.
func ParseMaintenancePriority(value string) (MaintenancePriority, error) {
	for _, candidate := range validMaintenancePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance priority %q", value)
}

// MaintenanceStatus tracks a ticket through its lifecycle.
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled MaintenanceStatus = "Scheduled"
	MaintenanceStatusResolved  MaintenanceStatus = "Resolved"
	MaintenanceStatusCanceled  MaintenanceStatus = "Canceled"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusScheduled,
	MaintenanceStatusResolved,
	MaintenanceStatusCanceled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMaintenanceStatus converts raw strings into MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}
