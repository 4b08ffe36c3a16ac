package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"otmqtt-bridge/pkg/health"
)

type recordingPublisher struct {
	mu          sync.Mutex
	published   []string
	diagnostics []string
	err         error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, topic+"="+string(payload))
	return nil
}

func (p *recordingPublisher) PublishDiagnostic(ctx context.Context, code int, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diagnostics = append(p.diagnostics, message)
	return nil
}

func TestHeartbeatPublishesOnline(t *testing.T) {
	pub := &recordingPublisher{}
	monitor := health.NewGatewayHealthMonitor(time.Second)
	monitor.RecordFrame()

	s := NewHeartbeatService(pub, monitor, "otgw", time.Minute)
	s.SendImmediateHeartbeat(context.Background())

	if len(pub.published) != 1 || pub.published[0] != "otgw/state=online" {
		t.Fatalf("Unexpected publishes: %v", pub.published)
	}
	if len(pub.diagnostics) != 1 || !strings.Contains(pub.diagnostics[0], "gateway online, 1 frames") {
		t.Errorf("Unexpected diagnostics: %v", pub.diagnostics)
	}
}

func TestHeartbeatSkipsDiagnosticOnFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("not connected")}
	s := NewHeartbeatService(pub, health.NewGatewayHealthMonitor(time.Second), "otgw", time.Minute)
	s.SendImmediateHeartbeat(context.Background())

	if len(pub.diagnostics) != 0 {
		t.Error("Expected no diagnostic after failed heartbeat")
	}
}

func TestHeartbeatLoopStopsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewHeartbeatService(pub, health.NewGatewayHealthMonitor(time.Second), "otgw", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected heartbeat loop to stop")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.published) == 0 {
		t.Error("Expected at least one heartbeat")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	s := NewHeartbeatService(&recordingPublisher{}, health.NewGatewayHealthMonitor(time.Second), "otgw", 0)
	// returns immediately
	s.Start(context.Background())
}
