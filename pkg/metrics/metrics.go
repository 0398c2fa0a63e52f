package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики монитора слотов
var (
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appointment_monitor_cycles_total",
			Help: "Общее количество завершенных циклов опроса",
		},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "appointment_monitor_cycle_duration_seconds",
			Help:    "Длительность цикла опроса в секундах (без паузы)",
			Buckets: prometheus.DefBuckets,
		},
	)

	LastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appointment_monitor_last_cycle_timestamp_seconds",
			Help: "Unix-время окончания последнего цикла",
		},
	)

	// Метрики запросов к API расписания
	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_monitor_fetch_requests_total",
			Help: "Количество запросов слотов по программе и результату",
		},
		[]string{"program", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appointment_monitor_fetch_duration_seconds",
			Help:    "Время запроса слотов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"program"},
	)

	SlotsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_monitor_slots_found_total",
			Help: "Количество найденных активных слотов",
		},
		[]string{"program"},
	)

	// Метрики уведомлений
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_monitor_notifications_sent_total",
			Help: "Количество отправленных уведомлений",
		},
		[]string{"channel", "status"},
	)

	// Метрики HTTP сервера статуса
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_monitor_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appointment_monitor_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Метрики производительности
	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appointment_monitor_memory_usage_bytes",
			Help: "Использование памяти в байтах",
		},
	)

	GoroutinesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appointment_monitor_goroutines_count",
			Help: "Количество активных горутин",
		},
	)
)

// Исходы запроса слотов
const (
	OutcomeSlots   = "slots"
	OutcomeEmpty   = "empty"
	OutcomeFailure = "failure"
)

// RecordCycle записывает метрики завершенного цикла
func RecordCycle(seconds float64, finishedAt int64) {
	CyclesTotal.Inc()
	CycleDuration.Observe(seconds)
	LastCycleTimestamp.Set(float64(finishedAt))
}

// RecordFetch записывает метрику запроса слотов
func RecordFetch(program, outcome string, seconds float64, slots int) {
	FetchRequests.WithLabelValues(program, outcome).Inc()
	FetchDuration.WithLabelValues(program).Observe(seconds)
	if slots > 0 {
		SlotsFound.WithLabelValues(program).Add(float64(slots))
	}
}

// RecordNotification записывает метрику отправки уведомления
func RecordNotification(channel, status string) {
	NotificationsSent.WithLabelValues(channel, status).Inc()
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
