package recovery

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestManager(grace time.Duration) (*ErrorRecoveryManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewErrorRecoveryManager(grace)
	m.now = clock.now
	return m, clock
}

func TestDefaultGracePeriod(t *testing.T) {
	m := NewErrorRecoveryManager(0)
	if m.errorGracePeriod != 15*time.Second {
		t.Errorf("Expected default grace period 15s, got %v", m.errorGracePeriod)
	}
}

func TestErrorSequenceReportedOnce(t *testing.T) {
	m, clock := newTestManager(10 * time.Second)

	if m.RecordError() {
		t.Error("Expected grace period not expired on first error")
	}
	if !m.IsInGracePeriod() {
		t.Error("Expected to be in grace period")
	}
	if m.ShouldReport() {
		t.Error("Expected no report inside grace period")
	}

	clock.t = clock.t.Add(11 * time.Second)
	if !m.RecordError() {
		t.Error("Expected grace period expired")
	}
	if !m.ShouldReport() {
		t.Fatal("Expected report after grace period")
	}
	m.MarkReported()
	if m.ShouldReport() {
		t.Error("Expected a single report per sequence")
	}
	if m.GetConsecutiveErrors() != 2 {
		t.Errorf("Expected 2 consecutive errors, got %d", m.GetConsecutiveErrors())
	}
	if m.GetTimeSinceFirstError() != 11*time.Second {
		t.Errorf("Expected 11s since first error, got %v", m.GetTimeSinceFirstError())
	}
}

func TestSuccessEndsSequence(t *testing.T) {
	m, clock := newTestManager(time.Second)

	m.RecordError()
	clock.t = clock.t.Add(2 * time.Second)
	m.MarkReported()
	m.RecordSuccess()

	if m.GetConsecutiveErrors() != 0 || m.IsInGracePeriod() || m.GetTimeSinceFirstError() != 0 {
		t.Error("Expected success to clear the error sequence")
	}

	m.RecordError()
	clock.t = clock.t.Add(2 * time.Second)
	if !m.ShouldReport() {
		t.Error("Expected a new sequence to be reportable again")
	}
}
