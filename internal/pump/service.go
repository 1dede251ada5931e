package pump

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/enums"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/vegobolt/vegobolt-backend/pkg/mqtt"
	"github.com/vegobolt/vegobolt-backend/pkg/tapo"
)

// StatusDTO reports the pump relay position.
type StatusDTO struct {
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// EnergyDTO reports the smart plug consumption counters.
type EnergyDTO struct {
	TodayRuntimeMin int64 `json:"today_runtime_min"`
	MonthRuntimeMin int64 `json:"month_runtime_min"`
	TodayEnergyWh   int64 `json:"today_energy_wh"`
	MonthEnergyWh   int64 `json:"month_energy_wh"`
	CurrentPowerW   int64 `json:"current_power_w"`
}

// statusEvent is the wire shape published to the pump status topic.
type statusEvent struct {
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Service defines the pump control behavior needed by the controller and
// the control topic consumer.
type Service interface {
	TurnOn(ctx context.Context, source string) (*StatusDTO, error)
	TurnOff(ctx context.Context, source string) (*StatusDTO, error)
	Toggle(ctx context.Context, source string) (*StatusDTO, error)
	Status(ctx context.Context) (*StatusDTO, error)
	Energy(ctx context.Context) (*EnergyDTO, error)
	Control(ctx context.Context, command, source string) (*StatusDTO, error)
}

type service struct {
	device    tapo.Device
	publisher mqtt.Publisher
	logg      *logger.Logger
	cfg       config.MQTTConfig
	now       func() time.Time

	// mu serializes every state change so concurrent toggles cannot
	// interleave their read and write against the plug.
	mu sync.Mutex
}

// ServiceParams bundles the dependencies required to build a pump service.
type ServiceParams struct {
	Device    tapo.Device
	Publisher mqtt.Publisher // optional, nil skips status publishing
	Logger    *logger.Logger
	MQTT      config.MQTTConfig
}

// NewService constructs a pump service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Device == nil {
		return nil, fmt.Errorf("pump device is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		device:    params.Device,
		publisher: params.Publisher,
		logg:      params.Logger,
		cfg:       params.MQTT,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) TurnOn(ctx context.Context, source string) (*StatusDTO, error) {
	return s.setState(ctx, true, source)
}

func (s *service) TurnOff(ctx context.Context, source string) (*StatusDTO, error) {
	return s.setState(ctx, false, source)
}

// Toggle reads the relay and drives it to the complementary position. The
// mutex makes the read-modify-write atomic with respect to other callers.
func (s *service) Toggle(ctx context.Context, source string) (*StatusDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	on, err := s.device.IsOn(ctx)
	if err != nil {
		return nil, err
	}
	return s.applyState(ctx, !on, source)
}

func (s *service) setState(ctx context.Context, on bool, source string) (*StatusDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyState(ctx, on, source)
}

// applyState assumes the caller holds mu.
func (s *service) applyState(ctx context.Context, on bool, source string) (*StatusDTO, error) {
	if err := s.device.SetState(ctx, on); err != nil {
		return nil, err
	}

	status := &StatusDTO{State: stateLabel(on), Timestamp: s.now()}
	s.publishStatus(ctx, status, source)
	return status, nil
}

func (s *service) Status(ctx context.Context) (*StatusDTO, error) {
	on, err := s.device.IsOn(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusDTO{State: stateLabel(on), Timestamp: s.now()}, nil
}

func (s *service) Energy(ctx context.Context) (*EnergyDTO, error) {
	usage, err := s.device.EnergyUsage(ctx)
	if err != nil {
		return nil, err
	}
	return &EnergyDTO{
		TodayRuntimeMin: usage.TodayRuntime,
		MonthRuntimeMin: usage.MonthRuntime,
		TodayEnergyWh:   usage.TodayEnergy,
		MonthEnergyWh:   usage.MonthEnergy,
		CurrentPowerW:   usage.CurrentPowerW,
	}, nil
}

// Control maps a raw command string (HTTP body or MQTT payload) onto a pump
// operation. Recognized commands: ON/1, OFF/0, TOGGLE.
func (s *service) Control(ctx context.Context, command, source string) (*StatusDTO, error) {
	switch strings.ToUpper(strings.TrimSpace(command)) {
	case "ON", "1":
		return s.TurnOn(ctx, source)
	case "OFF", "0":
		return s.TurnOff(ctx, source)
	case "TOGGLE":
		return s.Toggle(ctx, source)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown pump command %q", command))
	}
}

func (s *service) publishStatus(ctx context.Context, status *StatusDTO, source string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(statusEvent{
		State:     status.State,
		Timestamp: status.Timestamp,
		Source:    source,
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.cfg.PumpStatusTopic, payload); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("pump status publish failed: %v", err))
	}
}

func stateLabel(on bool) string {
	if on {
		return string(enums.PumpStateOn)
	}
	return string(enums.PumpStateOff)
}
