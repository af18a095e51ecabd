package metrics

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler обрабатывает HTTP запросы для метрик
type Handler struct {
	metrics     *Metrics
	logger      *zap.Logger
	geminiReady func() bool
}

// NewHandler создает новый обработчик метрик.
// geminiReady сообщает, настроен ли клиент Gemini, может быть nil.
func NewHandler(metrics *Metrics, logger *zap.Logger, geminiReady func() bool) *Handler {
	return &Handler{
		metrics:     metrics,
		logger:      logger,
		geminiReady: geminiReady,
	}
}

// MetricsHandler возвращает HTTP handler для Prometheus метрик
func (h *Handler) MetricsHandler() http.Handler {
	return h.metrics.Handler()
}

// HealthHandler возвращает статус здоровья сервиса
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ready := h.geminiReady != nil && h.geminiReady()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{"status": "ok", "gemini": ready}); err != nil {
		h.logger.Error("ошибка записи ответа health", zap.Error(err))
	}
}
