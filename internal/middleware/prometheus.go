package middleware

import (
	"net/http"
	"strconv"
	"time"

	"appointment_monitor/pkg/metrics"
)

// PrometheusMiddleware добавляет метрики Prometheus для HTTP запросов
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Создаем ResponseWriter для захвата статус-кода
		wrappedWriter := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrappedWriter, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrappedWriter.statusCode)
		endpoint := knownEndpoint(r.URL.Path)

		metrics.RecordHTTPRequest(r.Method, endpoint, status)
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration)
	})
}

// knownEndpoint сводит неизвестные пути к метке other
func knownEndpoint(path string) string {
	switch path {
	case "/health", "/metrics":
		return path
	default:
		return "other"
	}
}

// responseWriter оборачивает http.ResponseWriter для захвата статус-кода
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader захватывает статус-код ответа
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
