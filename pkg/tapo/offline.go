package tapo

import (
	"context"

	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
)

// Offline returns a Device for deployments without a smart plug. Every call
// fails with a dependency error so pump endpoints degrade instead of the
// process refusing to start.
func Offline() Device {
	return offlineDevice{}
}

type offlineDevice struct{}

func (offlineDevice) err() error {
	return pkgerrors.New(pkgerrors.CodeDependency, "smart plug is not configured")
}

func (d offlineDevice) IsOn(context.Context) (bool, error) {
	return false, d.err()
}

func (d offlineDevice) SetState(context.Context, bool) error {
	return d.err()
}

func (d offlineDevice) DeviceInfo(context.Context) (*DeviceInfo, error) {
	return nil, d.err()
}

func (d offlineDevice) EnergyUsage(context.Context) (*EnergyUsage, error) {
	return nil, d.err()
}
