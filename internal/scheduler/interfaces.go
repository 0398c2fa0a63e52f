package scheduler

import (
	"context"
	"time"
)

// IntervalScheduler определяет паузу между циклами опроса
type IntervalScheduler interface {
	// Next возвращает длительность следующей паузы
	Next() time.Duration

	// Wait ждет d или отмены контекста
	Wait(ctx context.Context, d time.Duration) error
}
