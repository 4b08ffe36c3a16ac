package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// PrometheusMetrics tracks application metrics in Prometheus format
type PrometheusMetrics struct {
	// Counters
	framesTotal             map[string]int64
	parityErrorsTotal       int64
	invalidFramesTotal      int64
	unknownRegistersTotal   int64
	decodeErrorsTotal       int64
	discoveryPublishedTotal int64
	mqttPublishesTotal      int64
	mqttErrorsTotal         int64

	// Gauges
	gatewayStatus int64 // 1 = online, 0 = offline
	brokerStatus  int64 // 1 = connected, 0 = disconnected

	// Simplified histogram: sum and count for average
	frameDurationSum   float64
	frameDurationCount int64

	mu sync.RWMutex
}

// NewPrometheusMetrics creates a new Prometheus metrics collector
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		framesTotal: make(map[string]int64),
	}
}

func (pm *PrometheusMetrics) add(counter *int64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	*counter++
}

// IncrementFrames increments the frame counter of role
func (pm *PrometheusMetrics) IncrementFrames(role string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.framesTotal[role]++
}

// IncrementParityErrors increments the parity error counter
func (pm *PrometheusMetrics) IncrementParityErrors() { pm.add(&pm.parityErrorsTotal) }

// IncrementInvalidFrames increments the invalid frame counter
func (pm *PrometheusMetrics) IncrementInvalidFrames() { pm.add(&pm.invalidFramesTotal) }

// IncrementUnknownRegisters increments the unknown register counter
func (pm *PrometheusMetrics) IncrementUnknownRegisters() { pm.add(&pm.unknownRegistersTotal) }

// IncrementDecodeErrors increments the decode error counter
func (pm *PrometheusMetrics) IncrementDecodeErrors() { pm.add(&pm.decodeErrorsTotal) }

// IncrementDiscoveryPublished increments the discovery counter
func (pm *PrometheusMetrics) IncrementDiscoveryPublished() { pm.add(&pm.discoveryPublishedTotal) }

// IncrementMQTTPublishes increments the MQTT publish counter
func (pm *PrometheusMetrics) IncrementMQTTPublishes() { pm.add(&pm.mqttPublishesTotal) }

// IncrementMQTTErrors increments the MQTT error counter
func (pm *PrometheusMetrics) IncrementMQTTErrors() { pm.add(&pm.mqttErrorsTotal) }

// SetGatewayStatus sets the gateway status (1 = online, 0 = offline)
func (pm *PrometheusMetrics) SetGatewayStatus(online bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.gatewayStatus = boolGauge(online)
}

// SetBrokerStatus sets the broker status (1 = connected, 0 = disconnected)
func (pm *PrometheusMetrics) SetBrokerStatus(connected bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.brokerStatus = boolGauge(connected)
}

func boolGauge(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// ObserveFrameDuration records a frame processing duration
func (pm *PrometheusMetrics) ObserveFrameDuration(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.frameDurationSum += duration.Seconds()
	pm.frameDurationCount++
}

// GetMetricsText returns metrics in Prometheus text format
func (pm *PrometheusMetrics) GetMetricsText() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	var avgDuration float64
	if pm.frameDurationCount > 0 {
		avgDuration = pm.frameDurationSum / float64(pm.frameDurationCount)
	}

	roles := make([]string, 0, len(pm.framesTotal))
	for role := range pm.framesTotal {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var b strings.Builder
	b.WriteString("# HELP otmqtt_frames_total Total number of OpenTherm frames received\n")
	b.WriteString("# TYPE otmqtt_frames_total counter\n")
	for _, role := range roles {
		fmt.Fprintf(&b, "otmqtt_frames_total{role=%q} %d\n", role, pm.framesTotal[role])
	}

	counter := func(name, help string, v int64) {
		fmt.Fprintf(&b, "\n# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(&b, "\n# HELP %s %s\n# TYPE %s gauge\n%s %d\n", name, help, name, name, v)
	}

	counter("otmqtt_parity_errors_total", "Frames with a mismatching parity bit", pm.parityErrorsTotal)
	counter("otmqtt_invalid_frames_total", "Frames whose message type carries no payload", pm.invalidFramesTotal)
	counter("otmqtt_unknown_registers_total", "Register ids missing from the register table", pm.unknownRegistersTotal)
	counter("otmqtt_decode_errors_total", "Register metadata mismatches and unparsable frames", pm.decodeErrorsTotal)
	counter("otmqtt_discovery_published_total", "Home Assistant discovery documents published", pm.discoveryPublishedTotal)
	counter("mqtt_publishes_total", "Total number of MQTT publish operations", pm.mqttPublishesTotal)
	counter("mqtt_errors_total", "Total number of MQTT publish errors", pm.mqttErrorsTotal)
	gauge("gateway_status", "Current gateway status (1 = online, 0 = offline)", pm.gatewayStatus)
	gauge("broker_status", "Current broker connection (1 = connected, 0 = disconnected)", pm.brokerStatus)

	fmt.Fprintf(&b, "\n# HELP otmqtt_frame_duration_seconds Average frame processing duration in seconds\n"+
		"# TYPE otmqtt_frame_duration_seconds gauge\notmqtt_frame_duration_seconds %.6f\n", avgDuration)
	counter("otmqtt_frame_duration_count", "Total number of frame duration observations", pm.frameDurationCount)

	return b.String()
}

// ServeHTTP implements http.Handler interface for /metrics endpoint
func (pm *PrometheusMetrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, pm.GetMetricsText())
}

// StartMetricsServer starts an HTTP server on the given port to expose metrics
func (pm *PrometheusMetrics) StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", pm)

	// Create server with secure timeout settings (gosec G114)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return server.ListenAndServe()
}

// GetStats returns current metric values
func (pm *PrometheusMetrics) GetStats() MetricStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	var frames int64
	for _, n := range pm.framesTotal {
		frames += n
	}

	return MetricStats{
		FramesTotal:           frames,
		ParityErrorsTotal:     pm.parityErrorsTotal,
		InvalidFramesTotal:    pm.invalidFramesTotal,
		UnknownRegistersTotal: pm.unknownRegistersTotal,
		DecodeErrorsTotal:     pm.decodeErrorsTotal,
		MQTTPublishesTotal:    pm.mqttPublishesTotal,
		MQTTErrorsTotal:       pm.mqttErrorsTotal,
		GatewayOnline:         pm.gatewayStatus == 1,
		BrokerConnected:       pm.brokerStatus == 1,
	}
}

// MetricStats represents current metric statistics
type MetricStats struct {
	FramesTotal           int64
	ParityErrorsTotal     int64
	InvalidFramesTotal    int64
	UnknownRegistersTotal int64
	DecodeErrorsTotal     int64
	MQTTPublishesTotal    int64
	MQTTErrorsTotal       int64
	GatewayOnline         bool
	BrokerConnected       bool
}
