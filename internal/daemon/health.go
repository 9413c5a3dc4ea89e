package daemon

import (
	"encoding/json"
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the current health state of the daemon.
type HealthStatus struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	MemoryMB      float64       `json:"memory_mb"`
	Goroutines    int           `json:"goroutines"`
	RetryQueue    int           `json:"retry_queue"`
	PendingTimers int           `json:"pending_timers"`
	Checks        []CheckResult `json:"checks,omitempty"`
	LastCheck     time.Time     `json:"last_check"`
	Version       string        `json:"version,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker aggregates named checks. Any failing check makes the
// daemon degraded; it keeps running because every component is best-effort.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	version   string
	checks    map[string]func() error
	gauges    map[string]func() int
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		version:   version,
		checks:    make(map[string]func() error),
		gauges:    make(map[string]func() int),
	}
}

// AddCheck adds a named health check.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RemoveCheck removes a named health check.
func (h *HealthChecker) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checks, name)
}

// SetGauge registers a gauge: "retry_queue" or "pending_timers".
func (h *HealthChecker) SetGauge(name string, fn func() int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gauges[name] = fn
}

func (h *HealthChecker) gauge(name string) int {
	if fn, ok := h.gauges[name]; ok {
		return fn()
	}
	return 0
}

// Check runs every check and returns the status.
func (h *HealthChecker) Check() *HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.mu.RLock()
	defer h.mu.RUnlock()

	status := &HealthStatus{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		MemoryMB:      float64(memStats.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		RetryQueue:    h.gauge("retry_queue"),
		PendingTimers: h.gauge("pending_timers"),
		LastCheck:     time.Now(),
		Version:       h.version,
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := CheckResult{Name: name, Healthy: true}
		if err := h.checks[name](); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			status.Status = "degraded"
		}
		status.Checks = append(status.Checks, result)
	}

	return status
}

// IsHealthy returns true if every check passes.
func (h *HealthChecker) IsHealthy() bool {
	return h.Check().Status == "healthy"
}

// JSON returns the health status as JSON.
func (h *HealthChecker) JSON() ([]byte, error) {
	return json.MarshalIndent(h.Check(), "", "  ")
}

// Uptime returns how long the daemon has been running.
func (h *HealthChecker) Uptime() time.Duration {
	return time.Since(h.startTime)
}
