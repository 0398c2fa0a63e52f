package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"appointment_monitor/pkg/logger"
)

// TokenBucket реализует алгоритм Token Bucket для rate limiting
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64 // токенов в секунду
	lastRefill time.Time
	mu         sync.Mutex
	now        func() time.Time
}

// NewTokenBucket создает новый TokenBucket. Корзина стартует полной.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow проверяет, доступен ли токен
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// RateLimiter ограничивает запросы к серверу статуса по IP клиента
type RateLimiter struct {
	limiters   map[string]*TokenBucket
	lastAccess map[string]time.Time
	mu         sync.Mutex
	capacity   int
	refillRate float64
	idleTTL    time.Duration
	lastSweep  time.Time
	now        func() time.Time
	logger     *logger.Logger

	trustProxy bool
}

// NewRateLimiter пропускает requests запросов за duration с одного адреса
func NewRateLimiter(requests int, duration time.Duration, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.Nop()
	}
	if requests < 1 {
		requests = 1
	}
	return &RateLimiter{
		limiters:   make(map[string]*TokenBucket),
		lastAccess: make(map[string]time.Time),
		capacity:   requests,
		refillRate: float64(requests) / duration.Seconds(),
		idleTTL:    10 * time.Minute,
		lastSweep:  time.Now(),
		now:        time.Now,
		logger:     log,
	}
}

// WithTrustedProxy включает определение клиента по X-Forwarded-For и
// X-Real-IP. Без прокси перед сервером эти заголовки задает сам клиент.
func (rl *RateLimiter) WithTrustedProxy(trust bool) *RateLimiter {
	rl.trustProxy = trust
	return rl
}

// GetLimiter возвращает корзину для ключа (IP адреса)
func (rl *RateLimiter) GetLimiter(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.idleTTL {
		rl.sweep(now)
	}

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = newTokenBucket(rl.capacity, rl.refillRate, rl.now)
		rl.limiters[key] = limiter
	}

	rl.lastAccess[key] = now
	return limiter
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	return rl.GetLimiter(key).Allow()
}

// Size возвращает число отслеживаемых адресов
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.limiters)
}

// sweep удаляет корзины, не использовавшиеся дольше idleTTL. Вызывается под mu.
func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.idleTTL)
	cleaned := 0

	for key, lastAccessed := range rl.lastAccess {
		if lastAccessed.Before(cutoff) {
			delete(rl.limiters, key)
			delete(rl.lastAccess, key)
			cleaned++
		}
	}
	rl.lastSweep = now

	if cleaned > 0 {
		rl.logger.Debug("Cleaned up rate limiters",
			logger.Int("cleaned_count", cleaned),
			logger.Int("remaining_count", len(rl.limiters)),
		)
	}
}

// HTTPRateLimitMiddleware создает HTTP middleware для rate limiting
func HTTPRateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getRealIP(r, limiter.trustProxy)

			if !limiter.Allow(key) {
				limiter.logger.Warn("Rate limit exceeded",
					logger.String("ip", key),
					logger.String("path", r.URL.Path),
				)

				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getRealIP извлекает IP клиента. Заголовки прокси учитываются только при trustProxy.
func getRealIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
			return strings.TrimSpace(strings.Split(ip, ",")[0])
		}
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return strings.TrimSpace(ip)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
