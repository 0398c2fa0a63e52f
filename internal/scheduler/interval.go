package scheduler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// RandomInterval выбирает паузу равномерно из целых секунд [lo, hi]
type RandomInterval struct {
	lo   int
	hi   int
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomInterval создает планировщик паузы. Границы lo и hi в секундах,
// включительно.
func NewRandomInterval(lo, hi int) (*RandomInterval, error) {
	return NewRandomIntervalWithSource(lo, hi, rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
}

// NewRandomIntervalWithSource создает планировщик с заданным источником
// случайных чисел
func NewRandomIntervalWithSource(lo, hi int, src rand.Source) (*RandomInterval, error) {
	if lo < 0 {
		return nil, fmt.Errorf("interval minimum must be non-negative, got %d", lo)
	}
	if lo > hi {
		return nil, fmt.Errorf("interval minimum %d is greater than maximum %d", lo, hi)
	}

	return &RandomInterval{
		lo:   lo,
		hi:   hi,
		rand: rand.New(src),
	}, nil
}

// Seconds возвращает следующую паузу в целых секундах
func (r *RandomInterval) Seconds() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lo + r.rand.IntN(r.hi-r.lo+1)
}

// Next реализует IntervalScheduler
func (r *RandomInterval) Next() time.Duration {
	return time.Duration(r.Seconds()) * time.Second
}

// Wait реализует IntervalScheduler
func (r *RandomInterval) Wait(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

// Sleep ждет d или отмены контекста
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
