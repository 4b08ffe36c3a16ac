package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"otmqtt-bridge/pkg/logger"
)

// PerformanceTracker counts decoded and rejected frames per role between
// periodic log summaries
type PerformanceTracker struct {
	decoded         map[string]int
	rejected        map[string]int
	lastSummaryTime time.Time
	summaryInterval time.Duration
	log             logger.ILogger
	now             func() time.Time
	mu              sync.Mutex
}

// PerformanceStats represents performance statistics
type PerformanceStats struct {
	DecodedFrames  int
	RejectedFrames int
	LastSummary    time.Time
	SuccessRate    float64
}

// NewPerformanceTracker creates a tracker that logs a summary at most once
// per summaryInterval
func NewPerformanceTracker(summaryInterval time.Duration, log logger.ILogger) *PerformanceTracker {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &PerformanceTracker{
		decoded:         make(map[string]int),
		rejected:        make(map[string]int),
		lastSummaryTime: time.Now(),
		summaryInterval: summaryInterval,
		log:             log,
		now:             time.Now,
	}
}

// RecordFrame counts one frame of role and logs the summary when it is due
func (pt *PerformanceTracker) RecordFrame(role string, decoded bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if decoded {
		pt.decoded[role]++
	} else {
		pt.rejected[role]++
	}

	if pt.now().Sub(pt.lastSummaryTime) >= pt.summaryInterval {
		pt.log.LogInfo("📊 Frames in last %v: %s", pt.summaryInterval, pt.summaryLocked())
		pt.resetLocked()
	}
}

func (pt *PerformanceTracker) summaryLocked() string {
	roles := make(map[string]bool)
	for role := range pt.decoded {
		roles[role] = true
	}
	for role := range pt.rejected {
		roles[role] = true
	}
	names := make([]string, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, role := range names {
		parts[i] = fmt.Sprintf("%s %d decoded/%d rejected", role, pt.decoded[role], pt.rejected[role])
	}
	return strings.Join(parts, ", ")
}

// GetStats returns the totals since the last summary
func (pt *PerformanceTracker) GetStats() PerformanceStats {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	stats := PerformanceStats{LastSummary: pt.lastSummaryTime}
	for _, n := range pt.decoded {
		stats.DecodedFrames += n
	}
	for _, n := range pt.rejected {
		stats.RejectedFrames += n
	}
	if total := stats.DecodedFrames + stats.RejectedFrames; total > 0 {
		stats.SuccessRate = float64(stats.DecodedFrames) / float64(total) * 100.0
	}
	return stats
}

// Reset resets all counters and timers
func (pt *PerformanceTracker) Reset() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.resetLocked()
}

func (pt *PerformanceTracker) resetLocked() {
	pt.decoded = make(map[string]int)
	pt.rejected = make(map[string]int)
	pt.lastSummaryTime = pt.now()
}
