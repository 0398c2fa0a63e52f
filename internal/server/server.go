package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"appointment_monitor/internal/middleware"
	"appointment_monitor/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер статуса монитора
type Server struct {
	httpServer    *http.Server
	logger        *logger.Logger
	healthChecker *HealthChecker
	rateLimiter   *middleware.RateLimiter
}

// New создает HTTP сервер статуса на указанном порту
func New(port string, healthChecker *HealthChecker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	server := &Server{
		logger:        log,
		healthChecker: healthChecker,
	}

	server.httpServer = &http.Server{
		Addr:           ":" + port,
		Handler:        server.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return server
}

// WithRateLimiter включает ограничение запросов по IP
func (s *Server) WithRateLimiter(rl *middleware.RateLimiter) *Server {
	s.rateLimiter = rl
	s.httpServer.Handler = s.Handler()
	return s
}

// Handler возвращает маршруты сервера с middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthChecker.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = s.securityHeadersMiddleware(mux)
	handler = s.methodMiddleware(handler)
	if s.rateLimiter != nil {
		handler = middleware.HTTPRateLimitMiddleware(s.rateLimiter)(handler)
	}
	handler = s.loggingMiddleware(handler)

	return middleware.PrometheusMiddleware(handler)
}

// Start запускает сервер и блокируется до отмены контекста или ошибки
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting status server",
		logger.String("addr", s.httpServer.Addr),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown корректно завершает работу сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down status server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return err
	}

	s.logger.Info("Status server shut down successfully")
	return nil
}
