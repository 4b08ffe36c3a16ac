package services

import (
	"context"
	"fmt"
	"time"

	"otmqtt-bridge/pkg/health"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/topics"
)

// StatusPublisher is the part of the MQTT client the heartbeat needs
type StatusPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retain bool) error
	PublishDiagnostic(ctx context.Context, code int, message string) error
}

// HeartbeatService periodically re-asserts the bridge availability topic
// and refreshes the diagnostic sensor with the gateway state
type HeartbeatService struct {
	publisher     StatusPublisher
	healthMonitor *health.GatewayHealthMonitor
	stateTopic    string
	interval      time.Duration
}

// NewHeartbeatService creates a new heartbeat service for the bridge topic prefix
func NewHeartbeatService(
	publisher StatusPublisher,
	healthMonitor *health.GatewayHealthMonitor,
	topic string,
	interval time.Duration,
) *HeartbeatService {
	return &HeartbeatService{
		publisher:     publisher,
		healthMonitor: healthMonitor,
		stateTopic:    topics.BuildBridgeTopic(topic, "state"),
		interval:      interval,
	}
}

// Start begins the heartbeat loop. A zero interval disables it.
func (s *HeartbeatService) Start(ctx context.Context) {
	if s.interval <= 0 {
		logger.LogDebug("💓 Heartbeat disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.LogInfo("💓 Heartbeat service started with interval: %v", s.interval)

	for {
		select {
		case <-ctx.Done():
			logger.LogDebug("🔇 Heartbeat service stopped")
			return
		case <-ticker.C:
			s.sendHeartbeat(ctx)
		}
	}
}

// sendHeartbeat publishes online and the current gateway summary
func (s *HeartbeatService) sendHeartbeat(ctx context.Context) {
	if err := s.publisher.Publish(ctx, s.stateTopic, []byte("online"), true); err != nil {
		logger.LogError("⚠️ Heartbeat failed: %v", err)
		return
	}

	logger.LogDebug("💓 Heartbeat sent: online")

	gateway := "offline"
	if s.healthMonitor.IsOnline() {
		gateway = "online"
	}
	message := fmt.Sprintf("OpenTherm bridge running, gateway %s, %d frames", gateway, s.healthMonitor.GetFrameCount())
	if diagErr := s.publisher.PublishDiagnostic(ctx, 0, message); diagErr != nil {
		logger.LogDebug("⚠️ Diagnostic heartbeat failed: %v", diagErr)
	}
}

// SendImmediateHeartbeat sends a heartbeat immediately (useful for startup)
func (s *HeartbeatService) SendImmediateHeartbeat(ctx context.Context) {
	s.sendHeartbeat(ctx)
}
