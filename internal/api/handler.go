// Package api локальный HTTP сервер: синтез по запросу и прокси к чату
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lingua-voice/internal/ai"
	"lingua-voice/internal/metrics"
	"lingua-voice/internal/tts"
	"lingua-voice/internal/vertex"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	pathTTS     = "/api/tts"
	pathChat    = "/api/chat"
	pathHealth  = "/api/health"
	pathMetrics = "/metrics"

	maxBodyBytes     = 1 << 20
	synthesisTimeout = 60 * time.Second
)

// Config параметры обработчика
type Config struct {
	Voice          string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Handler обрабатывает запросы фронтенда. Синтез выполняется одним запросом,
// без кэша и без повторов: ошибка сразу возвращается клиенту.
type Handler struct {
	synth   tts.TTSService
	chat    ai.AIClient
	metrics *metrics.Metrics
	health  *metrics.Handler
	limiter *rate.Limiter
	group   singleflight.Group
	voice   string
	logger  *zap.Logger
}

// NewHandler создает обработчик API. chat может быть nil, тогда /api/chat отвечает 500.
func NewHandler(synth tts.TTSService, chat ai.AIClient, m *metrics.Metrics, health *metrics.Handler, cfg Config, logger *zap.Logger) *Handler {
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 0.5
	}
	if cfg.RateLimitBurst < 1 {
		cfg.RateLimitBurst = 5
	}
	return &Handler{
		synth:   synth,
		chat:    chat,
		metrics: m,
		health:  health,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		voice:   cfg.Voice,
		logger:  logger,
	}
}

// Routes возвращает маршруты с middleware
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+pathTTS, h.handleTTS)
	mux.HandleFunc("POST "+pathChat, h.handleChat)
	mux.HandleFunc("GET "+pathHealth, h.health.HealthHandler)
	mux.Handle("GET "+pathMetrics, h.health.MetricsHandler())

	return Chain(mux,
		Recovery(h.logger),
		RequestLogger(h.logger, h.metrics),
		CORS(),
	)
}

type ttsRequest struct {
	Text string `json:"text"`
}

type ttsResponse struct {
	AudioContent string `json:"audioContent"`
}

type historyItem struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatRequest struct {
	Message string        `json:"message"`
	History []historyItem `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	if !h.limiter.Allow() {
		h.logger.Warn("⏳ превышен лимит запросов синтеза")
		writeError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	h.logger.Info("🎤 запрос синтеза", zap.String("text", truncate(req.Text, 30)))

	v, err, shared := h.group.Do(req.Text, func() (any, error) {
		// запрос общий для всех ожидающих, поэтому не зависит от отмены первого клиента
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), synthesisTimeout)
		defer cancel()
		start := time.Now()
		audio, err := h.synth.SynthesizeText(ctx, req.Text, tts.VoiceProfile{Voice: h.voice, Directive: tts.DirectiveIntense})
		// метрика пишется один раз на вызов провайдера
		if h.metrics != nil {
			h.metrics.RecordSynthesis(metrics.SourceOnDemand, tts.StatusLabel(err), time.Since(start).Seconds())
		}
		return audio, err
	})
	if err != nil {
		status := synthesisErrorStatus(err)
		h.logger.Error("❌ ошибка синтеза по запросу", zap.Int("status", status), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}

	audio, _ := v.([]byte)
	writeJSON(w, http.StatusOK, ttsResponse{AudioContent: base64.StdEncoding.EncodeToString(audio)})
	h.logger.Info("✅ аудио отправлено", zap.Bool("shared", shared))
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	if h.chat == nil {
		writeError(w, http.StatusInternalServerError, "Gemini not configured")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message required")
		return
	}

	messages := make([]ai.Message, 0, len(req.History)+1)
	for _, item := range req.History {
		messages = append(messages, ai.Message{Role: ai.NormalizeRole(item.Role), Content: item.Text})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.Message})

	resp, err := h.chat.GenerateResponse(r.Context(), messages, ai.GenerationOptions{})
	if h.metrics != nil {
		h.metrics.RecordChat(err == nil)
	}
	if err != nil {
		h.logger.Error("❌ ошибка чата", zap.Error(err))
		switch {
		case errors.Is(err, ai.ErrNoResponse):
			writeError(w, http.StatusInternalServerError, "No response")
		case errors.Is(err, vertex.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "Gemini not configured")
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: resp.Content})
}

// decode читает тело запроса, при ошибке отвечает 400
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debug("некорректный JSON", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// synthesisErrorStatus сопоставляет ошибку синтеза с HTTP статусом
func synthesisErrorStatus(err error) int {
	switch {
	case tts.IsRateLimited(err):
		return http.StatusTooManyRequests
	case errors.Is(err, vertex.ErrNotConfigured):
		return http.StatusInternalServerError
	case tts.IsEmptyResponse(err), tts.IsServiceError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
