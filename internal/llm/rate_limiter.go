package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrRateLimited = errors.New("llm rate limit exceeded")

// RateLimiter реализует token bucket для запросов в минуту и токенов в час
type RateLimiter struct {
	requestsPerMinute int
	tokensPerHour     int
	now               func() time.Time

	// Request rate limiting (RPM)
	requestTokens    float64
	requestMu        sync.Mutex
	requestLastCheck time.Time

	// Token rate limiting (TPH)
	tokenBudget    float64
	tokenMu        sync.Mutex
	tokenLastCheck time.Time
}

// NewRateLimiter создает новый rate limiter
func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	return newRateLimiter(requestsPerMinute, tokensPerHour, time.Now)
}

func newRateLimiter(requestsPerMinute, tokensPerHour int, now func() time.Time) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 90000
	}

	t := now()
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokensPerHour:     tokensPerHour,
		now:               now,
		requestTokens:     float64(requestsPerMinute),
		requestLastCheck:  t,
		tokenBudget:       float64(tokensPerHour),
		tokenLastCheck:    t,
	}
}

func (rl *RateLimiter) refillRequestTokens() {
	now := rl.now()
	elapsed := now.Sub(rl.requestLastCheck)

	rl.requestTokens += elapsed.Minutes() * float64(rl.requestsPerMinute)
	if rl.requestTokens > float64(rl.requestsPerMinute) {
		rl.requestTokens = float64(rl.requestsPerMinute)
	}

	rl.requestLastCheck = now
}

func (rl *RateLimiter) refillTokenBudget() {
	now := rl.now()
	elapsed := now.Sub(rl.tokenLastCheck)

	rl.tokenBudget += elapsed.Hours() * float64(rl.tokensPerHour)
	if rl.tokenBudget > float64(rl.tokensPerHour) {
		rl.tokenBudget = float64(rl.tokensPerHour)
	}

	rl.tokenLastCheck = now
}

// AllowRequest проверяет, можно ли выполнить запрос
func (rl *RateLimiter) AllowRequest(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.requestMu.Lock()
	defer rl.requestMu.Unlock()

	rl.refillRequestTokens()

	if rl.requestTokens < 1 {
		waitTime := time.Minute / time.Duration(rl.requestsPerMinute)
		return fmt.Errorf("%w: %d RPM, повторите через %v", ErrRateLimited, rl.requestsPerMinute, waitTime)
	}

	rl.requestTokens--
	return nil
}

// AllowTokens проверяет, можно ли использовать указанное количество токенов
func (rl *RateLimiter) AllowTokens(ctx context.Context, tokens int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.tokenMu.Lock()
	defer rl.tokenMu.Unlock()

	rl.refillTokenBudget()

	if rl.tokenBudget < float64(tokens) {
		deficit := float64(tokens) - rl.tokenBudget
		waitTime := time.Duration(deficit / float64(rl.tokensPerHour) * float64(time.Hour))
		return fmt.Errorf("%w: %d TPH, требуется %d, доступно %d, повторите через %v",
			ErrRateLimited, rl.tokensPerHour, tokens, int(rl.tokenBudget), waitTime.Round(time.Second))
	}

	rl.tokenBudget -= float64(tokens)
	return nil
}

// ConsumeTokens списывает токены после успешного запроса
func (rl *RateLimiter) ConsumeTokens(tokens int) {
	rl.tokenMu.Lock()
	defer rl.tokenMu.Unlock()

	rl.tokenBudget -= float64(tokens)
	if rl.tokenBudget < 0 {
		rl.tokenBudget = 0
	}
}

// Stats возвращает текущую статистику лимитера
func (rl *RateLimiter) Stats() (requestsAvailable int, tokensAvailable int) {
	rl.requestMu.Lock()
	rl.refillRequestTokens()
	requestsAvailable = int(rl.requestTokens)
	rl.requestMu.Unlock()

	rl.tokenMu.Lock()
	rl.refillTokenBudget()
	tokensAvailable = int(rl.tokenBudget)
	rl.tokenMu.Unlock()

	return
}
