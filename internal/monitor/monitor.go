package monitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"appointment_monitor/internal/config"
	"appointment_monitor/internal/notifier"
	"appointment_monitor/internal/scheduler"
	"appointment_monitor/internal/schedulerapi"
	"appointment_monitor/pkg/logger"
	"appointment_monitor/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Subject тема уведомления о найденных слотах
const Subject = "Appointment Found"

// SlotFetcher запрашивает время активных слотов локации
type SlotFetcher interface {
	FetchSlots(ctx context.Context, q schedulerapi.Query) ([]string, error)
}

// Dispatcher рассылает отчет цикла
type Dispatcher interface {
	Dispatch(ctx context.Context, subject, body string) []notifier.Result
}

// Status описывает последний завершенный цикл
type Status struct {
	Cycles         int
	LastCycleAt    time.Time
	LastDuration   time.Duration
	LastSlotsFound int
	LastNotifiedAt time.Time
}

// Monitor опрашивает локации по кругу и рассылает найденные слоты
type Monitor struct {
	cfg        *config.Config
	fetcher    SlotFetcher
	dispatcher Dispatcher
	interval   scheduler.IntervalScheduler
	logger     *logger.Logger

	mu     sync.RWMutex
	status Status
}

// New создает монитор
func New(
	cfg *config.Config,
	fetcher SlotFetcher,
	dispatcher Dispatcher,
	interval scheduler.IntervalScheduler,
	log *logger.Logger,
) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	return &Monitor{
		cfg:        cfg,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     log,
	}
}

type target struct {
	program  string
	location int
}

// Run выполняет циклы до отмены контекста
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("Starting appointment monitoring...")

	for {
		m.RunCycle(ctx)
		if ctx.Err() != nil {
			break
		}

		d := m.interval.Next()
		m.logger.Debug("Sleeping until next check", logger.Duration("duration", d))
		if err := m.interval.Wait(ctx, d); err != nil {
			break
		}
	}

	m.logger.Info("Appointment monitoring stopped")
}

// RunCycle опрашивает все пары (программа, локация) и, если что-то найдено,
// один раз вызывает рассылку с полным отчетом
func (m *Monitor) RunCycle(ctx context.Context) *Report {
	start := time.Now()

	targets := m.targets()
	results := m.fetchAll(ctx, targets)

	report := &Report{}
	for i, t := range targets {
		if len(results[i]) == 0 {
			m.logger.Info("No available slots",
				logger.String("program", strings.ToUpper(t.program)),
				logger.Int("location", t.location),
			)
			continue
		}
		report.Add(t.program, t.location, results[i])
	}

	var notifiedAt time.Time
	if !report.Empty() {
		text := report.Text()
		m.logger.Info("Available slots found\n" + text)

		if delivered(m.dispatcher.Dispatch(ctx, Subject, text)) {
			notifiedAt = time.Now()
		} else {
			m.logger.Warn("No notification channel delivered the report",
				logger.Int("slots", report.SlotCount()),
			)
		}
	}

	finished := time.Now()
	duration := finished.Sub(start)
	metrics.RecordCycle(duration.Seconds(), finished.Unix())

	m.mu.Lock()
	m.status.Cycles++
	m.status.LastCycleAt = finished
	m.status.LastDuration = duration
	m.status.LastSlotsFound = report.SlotCount()
	if !notifiedAt.IsZero() {
		m.status.LastNotifiedAt = notifiedAt
	}
	m.mu.Unlock()

	return report
}

// delivered сообщает, доставил ли отчет хотя бы один канал
func delivered(results []notifier.Result) bool {
	for _, r := range results {
		if r.OK() {
			return true
		}
	}
	return false
}

// Status возвращает состояние последнего цикла
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.status
}

func (m *Monitor) targets() []target {
	var targets []target
	for _, program := range m.cfg.Programs {
		for _, location := range m.cfg.LocationsFor(program) {
			targets = append(targets, target{program: program, location: location})
		}
	}
	return targets
}

// fetchAll возвращает результаты в порядке targets. При concurrency > 1
// запросы идут через ограниченный пул.
func (m *Monitor) fetchAll(ctx context.Context, targets []target) [][]string {
	results := make([][]string, len(targets))

	if m.cfg.Concurrency <= 1 {
		for i, t := range targets {
			results[i] = m.fetch(ctx, t)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(m.cfg.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			results[i] = m.fetch(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetch никогда не возвращает ошибку: сбой запроса означает отсутствие слотов
// в этом цикле
func (m *Monitor) fetch(ctx context.Context, t target) []string {
	start := time.Now()
	q := schedulerapi.Query{
		LocationID: t.location,
		Limit:      m.cfg.Limit,
		StartDate:  m.cfg.StartDate,
		EndDate:    m.cfg.EndDate,
	}

	slots, err := m.fetcher.FetchSlots(ctx, q)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		m.logger.Error("Failed to fetch slots",
			logger.String("program", strings.ToUpper(t.program)),
			logger.Int("location", t.location),
			logger.Error(err),
		)
		metrics.RecordFetch(t.program, metrics.OutcomeFailure, elapsed, 0)
		return nil
	}

	outcome := metrics.OutcomeEmpty
	if len(slots) > 0 {
		outcome = metrics.OutcomeSlots
	}
	metrics.RecordFetch(t.program, outcome, elapsed, len(slots))

	return slots
}
