package retry

import (
	"context"
	"fmt"
	"time"

	"lingua-voice/internal/tts"

	"go.uber.org/zap"
)

// Policy политика повторов при ограничении скорости
type Policy struct {
	MaxAttempts int           // всего попыток, включая первую
	BaseDelay   time.Duration // пауза после n-й неудачной попытки равна BaseDelay*n
}

// DefaultPolicy 3 попытки с паузами 15с, 30с, 45с
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   15 * time.Second,
	}
}

// Sleeper приостанавливает выполнение на d или до отмены ctx
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep реализация Sleeper на таймере
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("ожидание прервано: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Operation одна попытка синтеза
type Operation func(ctx context.Context) ([]byte, error)

// Controller повторяет операцию только при tts.ErrRateLimited
type Controller struct {
	policy  Policy
	sleep   Sleeper
	logger  *zap.Logger
	onRetry func(attempt int, delay time.Duration)
}

// NewController создает контроллер повторов
func NewController(policy Policy, sleep Sleeper, logger *zap.Logger) *Controller {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BaseDelay < 0 {
		policy.BaseDelay = 0
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &Controller{
		policy: policy,
		sleep:  sleep,
		logger: logger,
	}
}

// OnRetry задает обратный вызов перед каждой паузой
func (c *Controller) OnRetry(fn func(attempt int, delay time.Duration)) {
	c.onRetry = fn
}

// Policy возвращает действующую политику
func (c *Controller) Policy() Policy {
	return c.policy
}

// Do выполняет op до MaxAttempts раз.
// ErrEmptyResponse и *tts.ServiceError возвращаются сразу, без паузы.
// После каждой попытки с ErrRateLimited выполняется пауза BaseDelay*номер_попытки,
// включая последнюю, после которой возвращается tts.ErrRetriesExhausted.
func (c *Controller) Do(ctx context.Context, op Operation) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		data, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("повтор успешен", zap.Int("attempt", attempt))
			}
			return data, nil
		}

		if !tts.IsRateLimited(err) {
			return nil, err
		}
		lastErr = err

		delay := c.policy.BaseDelay * time.Duration(attempt)
		c.logger.Warn("⏳ ограничение скорости, ждем перед повтором",
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.policy.MaxAttempts))

		if c.onRetry != nil {
			c.onRetry(attempt, delay)
		}

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	c.logger.Warn("❌ превышено максимальное количество попыток",
		zap.Int("attempts", c.policy.MaxAttempts),
		zap.Error(lastErr))

	return nil, fmt.Errorf("%w после %d попыток: %w", tts.ErrRetriesExhausted, c.policy.MaxAttempts, lastErr)
}
