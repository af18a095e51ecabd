package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Источники синтеза для меток
const (
	SourceBatch    = "batch"
	SourceOnDemand = "on_demand"
)

// Metrics содержит все метрики приложения
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// Счетчики
	units             *prometheus.CounterVec
	synthesisRequests *prometheus.CounterVec
	retryWaits        prometheus.Counter
	chatRequests      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec

	// Гистограммы
	synthesisDuration *prometheus.HistogramVec

	// Мьютекс для thread-safety
	mu sync.RWMutex
}

// New создает метрики в собственном реестре
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), logger)
}

// NewWithRegistry создает метрики и регистрирует их в переданном реестре
func NewWithRegistry(registry *prometheus.Registry, logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger:   logger,
		registry: registry,

		// Итоги обработки предложений
		units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tts_units_total",
				Help: "Количество обработанных предложений по итогу",
			},
			[]string{"outcome"}, // cache_hit, generated, failed
		),

		// Запросы синтеза
		synthesisRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tts_synthesis_requests_total",
				Help: "Количество запросов к сервису синтеза речи",
			},
			[]string{"source", "status"}, // source: batch, on_demand; status: success, rate_limited, empty, failed
		),

		retryWaits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tts_retry_waits_total",
				Help: "Количество пауз из-за ограничения скорости",
			},
		),

		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_requests_total",
				Help: "Количество запросов к чату",
			},
			[]string{"status"},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Количество HTTP запросов",
			},
			[]string{"path", "status"},
		),

		// Гистограмма времени синтеза
		synthesisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tts_synthesis_duration_seconds",
				Help:    "Время запроса синтеза речи в секундах",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"source"},
		),
	}

	// Регистрируем все метрики
	registry.MustRegister(
		m.units,
		m.synthesisRequests,
		m.retryWaits,
		m.chatRequests,
		m.httpRequests,
		m.synthesisDuration,
	)

	return m
}

// IncrementCounter увеличивает счетчик
func (m *Metrics) IncrementCounter(name string, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counter *prometheus.CounterVec

	switch name {
	case "tts_units_total":
		counter = m.units
	case "tts_synthesis_requests_total":
		counter = m.synthesisRequests
	case "chat_requests_total":
		counter = m.chatRequests
	case "http_requests_total":
		counter = m.httpRequests
	default:
		m.logger.Error("неизвестная метрика", zap.String("name", name))
		return
	}

	counter.WithLabelValues(labels...).Inc()
	m.logger.Debug("метрика увеличена", zap.String("metric", name), zap.Strings("labels", labels))
}

// ObserveHistogram добавляет наблюдение в гистограмму
func (m *Metrics) ObserveHistogram(name string, value float64, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case "tts_synthesis_duration_seconds":
		m.synthesisDuration.WithLabelValues(labels...).Observe(value)
	default:
		m.logger.Error("неизвестная гистограмма", zap.String("name", name))
		return
	}

	m.logger.Debug("гистограмма обновлена", zap.String("metric", name), zap.Float64("value", value))
}

// RecordUnit записывает итог обработки предложения
func (m *Metrics) RecordUnit(outcome string) {
	m.IncrementCounter("tts_units_total", outcome)
}

// RecordSynthesis записывает запрос синтеза и его длительность
func (m *Metrics) RecordSynthesis(source, status string, seconds float64) {
	m.IncrementCounter("tts_synthesis_requests_total", source, status)
	m.ObserveHistogram("tts_synthesis_duration_seconds", seconds, source)
}

// RecordRetryWait записывает паузу перед повтором
func (m *Metrics) RecordRetryWait() {
	m.retryWaits.Inc()
}

// RecordChat записывает запрос к чату
func (m *Metrics) RecordChat(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.IncrementCounter("chat_requests_total", status)
}

// RecordHTTPRequest записывает HTTP запрос
func (m *Metrics) RecordHTTPRequest(path, status string) {
	m.IncrementCounter("http_requests_total", path, status)
}

// Registry возвращает реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает HTTP handler для метрик
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
