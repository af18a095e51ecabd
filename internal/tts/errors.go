package tts

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse сервис ответил успешно, но без аудио. Не повторяется.
	ErrEmptyResponse = errors.New("ответ сервиса синтеза не содержит аудио")

	// ErrRateLimited сервис сообщил о превышении квоты (429 / RESOURCE_EXHAUSTED). Повторяется.
	ErrRateLimited = errors.New("превышен лимит запросов к сервису синтеза")

	// ErrRetriesExhausted все попытки завершились ограничением скорости
	ErrRetriesExhausted = errors.New("превышено максимальное количество попыток")
)

// ServiceError любая другая ошибка: сеть, авторизация, некорректный запрос.
// Не повторяется, чтобы не скрывать проблемы конфигурации.
type ServiceError struct {
	Provider   string
	StatusCode int // 0, если ответа не было
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ошибка сервиса синтеза %s (статус %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ошибка сервиса синтеза %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// rateLimitedError сохраняет исходную ошибку вместе с признаком ErrRateLimited
type rateLimitedError struct {
	provider string
	err      error
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRateLimited.Error(), e.provider, e.err)
}

func (e *rateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

func (e *rateLimitedError) Unwrap() error {
	return e.err
}

// NewRateLimitedError оборачивает ошибку провайдера как ErrRateLimited
func NewRateLimitedError(provider string, err error) error {
	return &rateLimitedError{provider: provider, err: err}
}

// IsRateLimited проверяет, можно ли повторить запрос после паузы
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsEmptyResponse проверяет, что сервис не вернул аудио
func IsEmptyResponse(err error) bool {
	return errors.Is(err, ErrEmptyResponse)
}

// IsServiceError проверяет, что ошибка относится к транспорту или сервису
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

// StatusLabel короткая метка исхода запроса синтеза для метрик
func StatusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRetriesExhausted), IsRateLimited(err):
		return "rate_limited"
	case IsEmptyResponse(err):
		return "empty"
	default:
		return "failed"
	}
}
