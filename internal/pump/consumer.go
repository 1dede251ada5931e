package pump

import (
	"context"
	"encoding/json"
	"strings"
)

// controlMessage is the accepted JSON form on the control topic. Plain text
// payloads ("ON", "toggle") are accepted too.
type controlMessage struct {
	Command string `json:"command"`
}

// HandleControlMessage processes one message from the pump control topic.
// Wired as the mqtt handler for the control topic in the composition root.
func HandleControlMessage(svc Service) func(ctx context.Context, topic string, payload []byte) error {
	return func(ctx context.Context, _ string, payload []byte) error {
		command := strings.TrimSpace(string(payload))
		if strings.HasPrefix(command, "{") {
			var msg controlMessage
			if err := json.Unmarshal(payload, &msg); err == nil && msg.Command != "" {
				command = msg.Command
			}
		}
		_, err := svc.Control(ctx, command, "mqtt")
		return err
	}
}
