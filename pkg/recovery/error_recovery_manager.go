package recovery

import (
	"time"
)

// ErrorRecoveryManager tracks runs of consecutive frame errors. A run that
// outlasts the grace period is reported once until a good frame ends it.
type ErrorRecoveryManager struct {
	consecutiveErrors int
	firstErrorTime    time.Time
	errorGracePeriod  time.Duration
	reported          bool
	now               func() time.Time
}

// NewErrorRecoveryManager creates a new error recovery manager
func NewErrorRecoveryManager(gracePeriod time.Duration) *ErrorRecoveryManager {
	if gracePeriod == 0 {
		gracePeriod = 15 * time.Second // Default grace period
	}

	return &ErrorRecoveryManager{
		errorGracePeriod: gracePeriod,
		now:              time.Now,
	}
}

// RecordError records an error and returns whether the grace period has expired
func (m *ErrorRecoveryManager) RecordError() bool {
	m.consecutiveErrors++

	// Start of an error sequence
	if m.firstErrorTime.IsZero() {
		m.firstErrorTime = m.now()
	}

	return m.now().Sub(m.firstErrorTime) >= m.errorGracePeriod
}

// RecordSuccess ends the current error sequence
func (m *ErrorRecoveryManager) RecordSuccess() {
	m.Reset()
}

// GetConsecutiveErrors returns the current count of consecutive errors
func (m *ErrorRecoveryManager) GetConsecutiveErrors() int {
	return m.consecutiveErrors
}

// ShouldReport returns true once per error sequence after the grace period
func (m *ErrorRecoveryManager) ShouldReport() bool {
	if m.reported || m.firstErrorTime.IsZero() {
		return false
	}
	return m.now().Sub(m.firstErrorTime) >= m.errorGracePeriod
}

// MarkReported suppresses further reports for the current sequence
func (m *ErrorRecoveryManager) MarkReported() {
	m.reported = true
}

// IsInGracePeriod returns true between the first error and the end of the grace period
func (m *ErrorRecoveryManager) IsInGracePeriod() bool {
	if m.firstErrorTime.IsZero() {
		return false
	}
	return m.now().Sub(m.firstErrorTime) < m.errorGracePeriod
}

// GetTimeSinceFirstError returns the duration since the first error in the current sequence
func (m *ErrorRecoveryManager) GetTimeSinceFirstError() time.Duration {
	if m.firstErrorTime.IsZero() {
		return 0
	}
	return m.now().Sub(m.firstErrorTime)
}

// Reset clears all error tracking state
func (m *ErrorRecoveryManager) Reset() {
	m.consecutiveErrors = 0
	m.firstErrorTime = time.Time{}
	m.reported = false
}
