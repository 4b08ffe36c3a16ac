package metrics

import "time"

// MetricsCollector defines the interface for collecting application metrics.
//
// Implementations:
//   - PrometheusMetrics: Prometheus text format with HTTP server
//   - NullMetrics: no-op implementation when metrics are disabled
type MetricsCollector interface {
	// IncrementFrames counts a frame received for role ("controller" or "responder")
	IncrementFrames(role string)

	// IncrementParityErrors counts frames whose parity bit does not match
	IncrementParityErrors()

	// IncrementInvalidFrames counts frames whose message type forbids decoding
	IncrementInvalidFrames()

	// IncrementUnknownRegisters counts registers first seen outside the table
	IncrementUnknownRegisters()

	// IncrementDecodeErrors counts metadata mismatches and unparsable payloads
	IncrementDecodeErrors()

	// IncrementDiscoveryPublished counts published discovery documents
	IncrementDiscoveryPublished()

	// IncrementMQTTPublishes increments the counter for successful MQTT publish operations
	IncrementMQTTPublishes()

	// IncrementMQTTErrors increments the counter for failed MQTT publish operations
	IncrementMQTTErrors()

	// SetGatewayStatus sets the reported state of the OpenTherm gateway monitor
	SetGatewayStatus(online bool)

	// SetBrokerStatus sets the MQTT broker connection state
	SetBrokerStatus(connected bool)

	// ObserveFrameDuration records the time spent processing one frame
	ObserveFrameDuration(duration time.Duration)

	// StartMetricsServer starts an HTTP server to expose metrics
	// (0 disables the server)
	StartMetricsServer(port int) error
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector
var _ MetricsCollector = (*PrometheusMetrics)(nil)
