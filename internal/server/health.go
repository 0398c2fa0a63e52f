package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"appointment_monitor/internal/monitor"
	"appointment_monitor/pkg/metrics"
)

// StatusProvider отдает состояние последнего цикла опроса
type StatusProvider interface {
	Status() monitor.Status
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]string      `json:"checks"`
	Monitor   MonitorStatus          `json:"monitor"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// MonitorStatus состояние цикла опроса в ответе health check
type MonitorStatus struct {
	Cycles         int    `json:"cycles"`
	LastCycleAt    string `json:"last_cycle_at,omitempty"`
	LastDurationMs int64  `json:"last_duration_ms"`
	LastSlotsFound int    `json:"last_slots_found"`
	LastNotifiedAt string `json:"last_notified_at,omitempty"`
}

// HealthChecker проверяет состояние системы
type HealthChecker struct {
	status    StatusProvider
	startTime time.Time
	version   string
	// staleAfter время без завершенного цикла, после которого монитор
	// считается зависшим
	staleAfter time.Duration
	now        func() time.Time
}

// NewHealthChecker создает новый health checker
func NewHealthChecker(status StatusProvider, version string, staleAfter time.Duration) *HealthChecker {
	return &HealthChecker{
		status:     status,
		startTime:  time.Now(),
		version:    version,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// HealthHandler обрабатывает запросы health check
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	overallStatus := "healthy"

	st := h.status.Status()
	if loopStatus := h.checkLoop(st); loopStatus != "healthy" {
		checks["monitor"] = loopStatus
		overallStatus = "unhealthy"
	} else {
		checks["monitor"] = "healthy"
	}

	if memStatus := h.checkMemory(); memStatus != "healthy" {
		checks["memory"] = memStatus
		if overallStatus == "healthy" {
			overallStatus = "warning"
		}
	} else {
		checks["memory"] = "healthy"
	}

	if goroutineStatus := h.checkGoroutines(); goroutineStatus != "healthy" {
		checks["goroutines"] = goroutineStatus
		if overallStatus == "healthy" {
			overallStatus = "warning"
		}
	} else {
		checks["goroutines"] = "healthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: h.now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    h.now().Sub(h.startTime).String(),
		Checks:    checks,
		Monitor:   toMonitorStatus(st),
		Metrics:   h.collectMetrics(),
	}

	w.Header().Set("Content-Type", "application/json")
	switch overallStatus {
	case "unhealthy":
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkLoop проверяет, что циклы опроса завершаются. До первого цикла
// отсчет идет от старта процесса.
func (h *HealthChecker) checkLoop(st monitor.Status) string {
	if h.staleAfter <= 0 {
		return "healthy"
	}

	last := st.LastCycleAt
	if last.IsZero() {
		last = h.startTime
	}
	if h.now().Sub(last) > h.staleAfter {
		return "stale: no completed cycle in " + h.staleAfter.String()
	}

	return "healthy"
}

func toMonitorStatus(st monitor.Status) MonitorStatus {
	ms := MonitorStatus{
		Cycles:         st.Cycles,
		LastDurationMs: st.LastDuration.Milliseconds(),
		LastSlotsFound: st.LastSlotsFound,
	}
	if !st.LastCycleAt.IsZero() {
		ms.LastCycleAt = st.LastCycleAt.Format(time.RFC3339)
	}
	if !st.LastNotifiedAt.IsZero() {
		ms.LastNotifiedAt = st.LastNotifiedAt.Format(time.RFC3339)
	}
	return ms
}

// checkMemory проверяет использование памяти
func (h *HealthChecker) checkMemory() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics.MemoryUsage.Set(float64(m.Alloc))

	const warningLimit = 256 * 1024 * 1024  // 256MB
	const criticalLimit = 512 * 1024 * 1024 // 512MB

	if m.Alloc > criticalLimit {
		return "critical: memory usage > 512MB"
	} else if m.Alloc > warningLimit {
		return "warning: memory usage > 256MB"
	}

	return "healthy"
}

// checkGoroutines проверяет количество горутин
func (h *HealthChecker) checkGoroutines() string {
	count := float64(runtime.NumGoroutine())

	metrics.GoroutinesCount.Set(count)

	const warningLimit = 100
	const criticalLimit = 1000

	if count > criticalLimit {
		return "critical: too many goroutines"
	} else if count > warningLimit {
		return "warning: high goroutine count"
	}

	return "healthy"
}

// collectMetrics собирает основные метрики для health check
func (h *HealthChecker) collectMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"runtime": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"version":    runtime.Version(),
		},
		"uptime_seconds": h.now().Sub(h.startTime).Seconds(),
	}
}
