package metrics

import "time"

// NullMetrics is a no-op implementation of MetricsCollector.
// Use this when metrics are disabled (metrics_port = 0).
type NullMetrics struct{}

// NewNullMetrics creates a new NullMetrics instance
func NewNullMetrics() *NullMetrics {
	return &NullMetrics{}
}

func (nm *NullMetrics) IncrementFrames(role string)                 {}
func (nm *NullMetrics) IncrementParityErrors()                      {}
func (nm *NullMetrics) IncrementInvalidFrames()                     {}
func (nm *NullMetrics) IncrementUnknownRegisters()                  {}
func (nm *NullMetrics) IncrementDecodeErrors()                      {}
func (nm *NullMetrics) IncrementDiscoveryPublished()                {}
func (nm *NullMetrics) IncrementMQTTPublishes()                     {}
func (nm *NullMetrics) IncrementMQTTErrors()                        {}
func (nm *NullMetrics) SetGatewayStatus(online bool)                {}
func (nm *NullMetrics) SetBrokerStatus(connected bool)              {}
func (nm *NullMetrics) ObserveFrameDuration(duration time.Duration) {}

// StartMetricsServer is a no-op (always returns nil)
func (nm *NullMetrics) StartMetricsServer(port int) error {
	return nil
}

// Compile-time verification that NullMetrics implements MetricsCollector
var _ MetricsCollector = (*NullMetrics)(nil)
