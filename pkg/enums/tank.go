package enums

// TankAlert labels the alert state derived from a reading.
type TankAlert string

const (
	TankAlertNormal      TankAlert = "normal"
	TankAlertOverheating TankAlert = "overheating"
	TankAlertTankFull    TankAlert = "tank-full"
)

// PumpState mirrors the smart plug relay position.
type PumpState string

const (
	PumpStateOn  PumpState = "on"
	PumpStateOff PumpState = "off"
)
