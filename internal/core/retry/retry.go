package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

type Classifier func(error) bool

type Sleeper func(ctx context.Context, d time.Duration) error

// Policy retries an operation only while Retryable says so, waiting
// BaseDelay*2^attempt between attempts, at most MaxRetries times.
// WaitAfterLast also takes the next wait after the final failed attempt.
type Policy struct {
	Name          string
	MaxRetries    int
	BaseDelay     time.Duration
	SuccessDelay  time.Duration
	WaitAfterLast bool

	Retryable Classifier
	Sleep     Sleeper
	OnRetry   func(name string, attempt int, delay time.Duration)
	Logger    *log.Logger
}

func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.BaseDelay * time.Duration(int64(1)<<uint(attempt))
}

// Schedule lists the waits taken when every attempt is rate limited.
func (p Policy) Schedule() []time.Duration {
	waits := p.MaxRetries
	if p.WaitAfterLast {
		waits++
	}

	out := make([]time.Duration, 0, waits)
	for attempt := 0; attempt < waits; attempt++ {
		out = append(out, p.Delay(attempt))
	}
	return out
}

func (p Policy) WithName(name string) Policy {
	p.Name = name
	return p
}

func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	classify := p.Retryable
	if classify == nil {
		classify = domain.IsRateLimited
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if p.SuccessDelay > 0 {
				if err := sleep(ctx, p.SuccessDelay); err != nil {
					return result, err
				}
			}
			return result, nil
		}

		if !classify(err) {
			return zero, err
		}

		if attempt >= p.MaxRetries {
			if p.WaitAfterLast {
				delay := p.Delay(attempt)
				logger.Printf("[RETRY] %s rate limited (attempt %d/%d), waiting %s before giving up", p.Name, attempt+1, p.MaxRetries+1, delay)
				if err := sleep(ctx, delay); err != nil {
					return zero, err
				}
			}
			return zero, fmt.Errorf("%s: %w after %d attempts: %w", p.Name, ErrRetriesExhausted, attempt+1, err)
		}

		delay := p.Delay(attempt)
		logger.Printf("[RETRY] %s rate limited (attempt %d/%d), waiting %s", p.Name, attempt+1, p.MaxRetries+1, delay)
		if p.OnRetry != nil {
			p.OnRetry(p.Name, attempt, delay)
		}

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
