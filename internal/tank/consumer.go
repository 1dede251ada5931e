package tank

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// HandleSensorMessage processes one telemetry message from the sensor topic
// and persists it through the service. Wired as the mqtt handler for the
// sensor data topic in the composition root.
func HandleSensorMessage(svc Service, validate *validator.Validate) func(ctx context.Context, topic string, payload []byte) error {
	return func(ctx context.Context, _ string, payload []byte) error {
		var req RecordReadingRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decoding sensor payload: %w", err)
		}
		if validate != nil {
			if err := validate.Struct(req); err != nil {
				return fmt.Errorf("validating sensor payload: %w", err)
			}
		}
		_, err := svc.RecordReading(ctx, req)
		return err
	}
}
