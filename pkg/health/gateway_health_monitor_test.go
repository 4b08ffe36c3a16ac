package health

import (
	"testing"
	"time"
)

func TestInitialState(t *testing.T) {
	m := NewGatewayHealthMonitor(time.Second)

	if m.IsOnline() {
		t.Error("Expected gateway unknown (offline) before any state or frame")
	}
	if !m.GetLastFrameTime().IsZero() {
		t.Error("Expected no frame time")
	}
}

func TestSetStateReportsChanges(t *testing.T) {
	m := NewGatewayHealthMonitor(time.Second)

	if !m.SetState(false) {
		t.Error("Expected first announced state to count as a change")
	}
	if m.SetState(false) {
		t.Error("Expected repeated state to be unchanged")
	}
	if !m.SetState(true) {
		t.Error("Expected offline to online to be a change")
	}
	if !m.IsOnline() {
		t.Error("Expected online")
	}
}

func TestFramesMarkOnline(t *testing.T) {
	m := NewGatewayHealthMonitor(time.Second)

	m.RecordFrame()
	m.RecordFrame()

	if !m.IsOnline() {
		t.Error("Expected frames to mark the gateway online")
	}
	if m.GetFrameCount() != 2 {
		t.Errorf("Expected 2 frames, got %d", m.GetFrameCount())
	}
	if m.GetLastFrameTime().IsZero() || m.GetLastStateChange().IsZero() {
		t.Error("Expected frame and state times to be set")
	}
}

func TestErrorsReportedAfterGracePeriod(t *testing.T) {
	m := NewGatewayHealthMonitor(time.Millisecond)

	if m.RecordError() {
		t.Error("Expected first error inside grace period")
	}
	time.Sleep(5 * time.Millisecond)
	if !m.RecordError() {
		t.Error("Expected report after grace period")
	}
	if m.RecordError() {
		t.Error("Expected a single report per error run")
	}
	if m.GetConsecutiveErrors() != 3 || m.GetErrorCount() != 3 {
		t.Errorf("Expected 3 errors, got %d/%d", m.GetConsecutiveErrors(), m.GetErrorCount())
	}

	m.RecordFrame()
	if m.GetConsecutiveErrors() != 0 {
		t.Error("Expected good frame to end the error run")
	}
	if m.GetErrorCount() != 3 {
		t.Error("Expected total error count to be kept")
	}
}
