package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status        string    `json:"status"`            // "healthy", "degraded", "unhealthy"
	Timestamp     time.Time `json:"timestamp"`         // Current timestamp
	Uptime        string    `json:"uptime"`            // Application uptime
	GatewayOnline bool      `json:"gateway_online"`    // OpenTherm gateway state
	LastFrame     string    `json:"last_frame"`        // Time since the last frame
	LastFrameAge  float64   `json:"last_frame_age_s"`  // Seconds since the last frame, -1 if none
	FrameCount    int       `json:"frame_count"`       // Frames decoded
	ErrorCount    int       `json:"error_count"`       // Frames rejected
	Version       string    `json:"version,omitempty"` // Application version (optional)
}

// HealthChecker interface for providing health information
type HealthChecker interface {
	IsOnline() bool
	GetLastFrameTime() time.Time
	GetFrameCount() int
	GetErrorCount() int
}

// HealthHandler provides HTTP health check endpoint
type HealthHandler struct {
	startTime     time.Time
	healthChecker HealthChecker
	version       string
	now           func() time.Time
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(healthChecker HealthChecker, version string) *HealthHandler {
	return &HealthHandler{
		startTime:     time.Now(),
		healthChecker: healthChecker,
		version:       version,
		now:           time.Now,
	}
}

// ServeHTTP implements http.Handler interface for /health endpoint
func (hh *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := hh.getHealthStatus()

	w.Header().Set("Content-Type", "application/json")

	statusCode := http.StatusOK
	if status.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(status); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode health status: %v", err), http.StatusInternalServerError)
	}
}

// getHealthStatus determines current health status
func (hh *HealthHandler) getHealthStatus() HealthStatus {
	now := hh.now()
	uptime := now.Sub(hh.startTime)

	isOnline := hh.healthChecker.IsOnline()
	lastFrame := hh.healthChecker.GetLastFrameTime()
	frameCount := hh.healthChecker.GetFrameCount()
	errorCount := hh.healthChecker.GetErrorCount()

	lastFrameStr := "never"
	lastFrameAge := -1.0
	if !lastFrame.IsZero() {
		timeSince := now.Sub(lastFrame)
		lastFrameAge = timeSince.Seconds()
		if timeSince < time.Minute {
			lastFrameStr = fmt.Sprintf("%d seconds ago", int(timeSince.Seconds()))
		} else if timeSince < time.Hour {
			lastFrameStr = fmt.Sprintf("%d minutes ago", int(timeSince.Minutes()))
		} else {
			lastFrameStr = fmt.Sprintf("%d hours ago", int(timeSince.Hours()))
		}
	}

	// Determine overall status
	status := "healthy"
	if !isOnline {
		status = "unhealthy"
	} else if errorCount > 0 {
		total := errorCount + frameCount
		errorRate := float64(errorCount) / float64(total) * 100.0
		if errorRate > 50.0 {
			status = "unhealthy"
		} else if errorRate > 20.0 {
			status = "degraded"
		}
	}

	return HealthStatus{
		Status:        status,
		Timestamp:     now,
		Uptime:        formatDuration(uptime),
		GatewayOnline: isOnline,
		LastFrame:     lastFrameStr,
		LastFrameAge:  lastFrameAge,
		FrameCount:    frameCount,
		ErrorCount:    errorCount,
		Version:       hh.version,
	}
}

// formatDuration formats a duration in human-readable form
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		return fmt.Sprintf("%d hours %d minutes", hours, minutes)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%d days %d hours", days, hours)
}

// NewServeMux routes /health, an index page and, when metrics is not nil,
// /metrics
func NewServeMux(handler *HealthHandler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", handler)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html>
<head><title>OpenTherm MQTT Bridge</title></head>
<body>
<h1>OpenTherm MQTT Bridge</h1>
<ul>
<li><a href="/health">Health Check</a></li>
<li><a href="/metrics">Metrics</a> (if enabled)</li>
</ul>
</body>
</html>`)
	})
	return mux
}

// StartHealthServer starts an HTTP server for health checks. metrics may be
// nil when metrics are served elsewhere or disabled.
func StartHealthServer(handler *HealthHandler, metrics http.Handler, port int) error {
	addr := fmt.Sprintf(":%d", port)

	// Create server with secure timeout settings (gosec G114)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewServeMux(handler, metrics),
		ReadTimeout:       15 * time.Second, // Max time to read request
		ReadHeaderTimeout: 10 * time.Second, // Max time to read headers
		WriteTimeout:      15 * time.Second, // Max time to write response
		IdleTimeout:       60 * time.Second, // Max time for keep-alive connections
	}

	return server.ListenAndServe()
}
