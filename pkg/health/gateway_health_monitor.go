package health

import (
	"sync"
	"time"

	"otmqtt-bridge/pkg/recovery"
)

// GatewayHealthMonitor tracks what the bridge knows about the OpenTherm
// gateway: its announced state, frame traffic and runs of bad frames
type GatewayHealthMonitor struct {
	isOnline        bool
	lastFrameTime   time.Time
	lastStateChange time.Time
	frameCount      int
	errorCount      int
	errorManager    *recovery.ErrorRecoveryManager
	mu              sync.RWMutex
}

// NewGatewayHealthMonitor creates a new gateway health monitor
func NewGatewayHealthMonitor(gracePeriod time.Duration) *GatewayHealthMonitor {
	return &GatewayHealthMonitor{
		errorManager: recovery.NewErrorRecoveryManager(gracePeriod),
	}
}

// IsOnline returns whether the gateway is currently considered online
func (m *GatewayHealthMonitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isOnline
}

// SetState records the state announced by the gateway and reports whether
// it differs from the previous one
func (m *GatewayHealthMonitor) SetState(online bool) (changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed = m.isOnline != online || m.lastStateChange.IsZero()
	if changed {
		m.lastStateChange = time.Now()
	}
	m.isOnline = online
	return changed
}

// RecordFrame records a frame that was decoded without error. A gateway
// relaying frames is online.
func (m *GatewayHealthMonitor) RecordFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frameCount++
	m.lastFrameTime = time.Now()
	m.errorManager.RecordSuccess()
	if !m.isOnline {
		m.isOnline = true
		m.lastStateChange = m.lastFrameTime
	}
}

// RecordError records a rejected frame and returns whether a run of errors
// has lasted past the grace period and should be reported
func (m *GatewayHealthMonitor) RecordError() (shouldReport bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorCount++
	m.lastFrameTime = time.Now()
	m.errorManager.RecordError()

	if m.errorManager.ShouldReport() {
		m.errorManager.MarkReported()
		return true
	}
	return false
}

// GetConsecutiveErrors returns the current count of consecutive errors
func (m *GatewayHealthMonitor) GetConsecutiveErrors() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorManager.GetConsecutiveErrors()
}

// GetLastFrameTime returns when the last frame arrived
func (m *GatewayHealthMonitor) GetLastFrameTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastFrameTime
}

// GetLastStateChange returns when the online state last changed
func (m *GatewayHealthMonitor) GetLastStateChange() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastStateChange
}

// GetFrameCount returns the number of good frames
func (m *GatewayHealthMonitor) GetFrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frameCount
}

// GetErrorCount returns the number of rejected frames
func (m *GatewayHealthMonitor) GetErrorCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorCount
}

// IsInGracePeriod returns true if currently in error grace period
func (m *GatewayHealthMonitor) IsInGracePeriod() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorManager.IsInGracePeriod()
}
