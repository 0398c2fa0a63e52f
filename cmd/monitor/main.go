package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment_monitor/internal/config"
	"appointment_monitor/internal/middleware"
	"appointment_monitor/internal/monitor"
	"appointment_monitor/internal/notifier"
	"appointment_monitor/internal/scheduler"
	"appointment_monitor/internal/schedulerapi"
	"appointment_monitor/internal/server"
	"appointment_monitor/pkg/logger"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.json", "path to the monitoring config (JSON or YAML)")
	debug := flag.Bool("debug", false, "enable debug logging")
	once := flag.Bool("once", false, "run a single check cycle and exit")
	flag.Parse()

	// .env необязателен: переменные могут прийти из окружения
	envErr := godotenv.Load()

	settings := config.LoadSettings()
	if *debug {
		settings.Debug = true
		if os.Getenv("LOG_FILE") == "" {
			settings.LogFile = "appointment_debug.log"
		}
	}

	level := logger.LevelInfo
	if settings.Debug {
		level = logger.LevelDebug
	}

	appLogger, logCloser, err := logger.Open(logger.Options{
		Level:    level,
		Console:  os.Stderr,
		FilePath: settings.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	appLogger.Info("Application started.",
		logger.String("version", version),
		logger.String("log_level", appLogger.Level().String()),
	)
	if envErr != nil {
		appLogger.Warn(".env file not found or could not be loaded", logger.Error(envErr))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.Fatal("Failed to load config", logger.String("path", *configPath), logger.Error(err))
	}
	appLogger.Info(cfg.Summary())

	creds := config.LoadCredentials()
	for _, credErr := range creds.Validate(cfg.Notifications) {
		appLogger.Warn("Notification channel is not fully configured", logger.Error(credErr))
	}

	interval, err := scheduler.NewRandomInterval(cfg.CheckInterval[0], cfg.CheckInterval[1])
	if err != nil {
		appLogger.Fatal("Invalid check interval", logger.Error(err))
	}

	client := schedulerapi.NewClient(settings.APIBaseURL, settings.HTTPTimeout, appLogger)
	dispatcher := notifier.New(cfg.Notifications, creds, settings, appLogger)
	appLogger.Info("Notification channels configured", logger.Any("channels", dispatcher.Channels()))
	mon := monitor.New(cfg, client, dispatcher, interval, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutdown signal received, stopping...")
		cancel()
	}()

	if *once {
		mon.RunCycle(ctx)
		return
	}

	if settings.StatusPort != "" {
		// Монитор считается зависшим, если за три худших цикла не завершил ни одного
		staleAfter := 3 * (time.Duration(cfg.CheckInterval[1])*time.Second + settings.HTTPTimeout*time.Duration(countLocations(cfg)))
		healthChecker := server.NewHealthChecker(mon, version, staleAfter)
		srv := server.New(settings.StatusPort, healthChecker, appLogger)
		if settings.StatusRateLimit > 0 {
			limiter := middleware.NewRateLimiter(settings.StatusRateLimit, time.Minute, appLogger).
				WithTrustedProxy(settings.StatusTrustProxy)
			srv.WithRateLimiter(limiter)
		}
		go func() {
			if err := srv.Start(ctx); err != nil {
				appLogger.Error("Status server error", logger.Error(err))
			}
		}()
	}

	mon.Run(ctx)
	appLogger.Info("Monitor stopped gracefully")
}

func countLocations(cfg *config.Config) int {
	n := 0
	for _, program := range cfg.Programs {
		n += len(cfg.LocationsFor(program))
	}
	if n == 0 {
		return 1
	}
	return n
}
