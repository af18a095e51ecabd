package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"lingua-voice/internal/tts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingSleeper запоминает запрошенные паузы и не ждет
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func rateLimited() error {
	return tts.NewRateLimitedError("test", errors.New("429"))
}

func TestController_SuccessFirstAttempt(t *testing.T) {
	sleeper := &recordingSleeper{}
	c := NewController(DefaultPolicy(), sleeper.Sleep, zap.NewNop())

	calls := 0
	data, err := c.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("ok"), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestController_RateLimitedThenSuccess(t *testing.T) {
	sleeper := &recordingSleeper{}
	c := NewController(DefaultPolicy(), sleeper.Sleep, zap.NewNop())

	calls := 0
	data, err := c.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		calls++
		if calls < 3 {
			return nil, rateLimited()
		}
		return []byte("audio"), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{15 * time.Second, 30 * time.Second}, sleeper.delays)
}

func TestController_RetriesExhausted(t *testing.T) {
	sleeper := &recordingSleeper{}
	c := NewController(DefaultPolicy(), sleeper.Sleep, zap.NewNop())

	calls := 0
	_, err := c.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		calls++
		return nil, rateLimited()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tts.ErrRetriesExhausted)
	assert.Equal(t, 3, calls, "четвертой попытки быть не должно")
	assert.Equal(t, []time.Duration{15 * time.Second, 30 * time.Second, 45 * time.Second}, sleeper.delays)
}

func TestController_FailFast(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "ошибка сервиса", err: &tts.ServiceError{Provider: "test", StatusCode: 403, Err: errors.New("forbidden")}},
		{name: "пустой ответ", err: tts.ErrEmptyResponse},
		{name: "прочая ошибка", err: errors.New("unexpected")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &recordingSleeper{}
			c := NewController(DefaultPolicy(), sleeper.Sleep, zap.NewNop())

			calls := 0
			_, err := c.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
				calls++
				return nil, tt.err
			})

			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, tts.ErrRetriesExhausted)
			assert.Equal(t, 1, calls)
			assert.Empty(t, sleeper.delays)
		})
	}
}

func TestController_RateLimitedThenFatal(t *testing.T) {
	sleeper := &recordingSleeper{}
	c := NewController(DefaultPolicy(), sleeper.Sleep, zap.NewNop())

	calls := 0
	_, err := c.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, rateLimited()
		}
		return nil, tts.ErrEmptyResponse
	})

	assert.ErrorIs(t, err, tts.ErrEmptyResponse)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{15 * time.Second}, sleeper.delays)
}

func TestController_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(Policy{MaxAttempts: 3, BaseDelay: time.Hour}, Sleep, zap.NewNop())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := c.Do(ctx, func(ctx context.Context) ([]byte, error) {
			calls++
			return nil, rateLimited()
		})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do не завершился после отмены контекста")
	}
}

func TestController_OnRetry(t *testing.T) {
	sleeper := &recordingSleeper{}
	c := NewController(Policy{MaxAttempts: 2, BaseDelay: time.Second}, sleeper.Sleep, zap.NewNop())

	var attempts []int
	c.OnRetry(func(attempt int, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	_, err := c.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		return nil, rateLimited()
	})

	assert.ErrorIs(t, err, tts.ErrRetriesExhausted)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestNewController_NormalizesPolicy(t *testing.T) {
	c := NewController(Policy{MaxAttempts: 0, BaseDelay: -time.Second}, nil, zap.NewNop())
	assert.Equal(t, Policy{MaxAttempts: 1, BaseDelay: 0}, c.Policy())
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
