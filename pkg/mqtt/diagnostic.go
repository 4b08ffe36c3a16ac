package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/topics"
)

// Diagnostic is the payload of the bridge diagnostic topic
type Diagnostic struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// PublishDiagnostic publishes diagnostic information with code and message
func (c *Client) PublishDiagnostic(ctx context.Context, code int, message string) error {
	if message == "" {
		return fmt.Errorf("diagnostic message is empty")
	}

	payload, err := json.Marshal(Diagnostic{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("error marshaling diagnostic: %w", err)
	}

	stateTopic := topics.BuildDiagnosticStateTopic(c.settings.Topic)
	logger.LogDebug("🔧 📤 Publishing diagnostic to '%s': %s", stateTopic, message)

	if err := c.Publish(ctx, stateTopic, payload, false); err != nil {
		return fmt.Errorf("error publishing diagnostic: %w", err)
	}
	return nil
}
