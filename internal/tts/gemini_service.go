package tts

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lingua-voice/internal/vertex"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash-preview-tts"
	DefaultGeminiVoice = "Aoede"

	providerGemini = "gemini"
)

// GeminiService предоставляет Text-to-Speech через нативный TTS Gemini
type GeminiService struct {
	logger    *zap.Logger
	generator vertex.ContentGenerator
	model     string
}

// NewGeminiService создает новый Gemini TTS сервис
func NewGeminiService(logger *zap.Logger, generator vertex.ContentGenerator, model string) *GeminiService {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiService{
		logger:    logger,
		generator: generator,
		model:     model,
	}
}

// SynthesizeText выполняет один запрос синтеза и возвращает аудио первого кандидата
func (s *GeminiService) SynthesizeText(ctx context.Context, text string, profile VoiceProfile) ([]byte, error) {
	voice := profile.Voice
	if voice == "" {
		voice = DefaultGeminiVoice
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: voice,
				},
			},
		},
	}

	s.logger.Debug("🎵 отправляем запрос к Gemini TTS",
		zap.String("model", s.model),
		zap.String("voice", voice),
		zap.Int("text_length", len(text)))

	start := time.Now()
	resp, err := s.generator.GenerateContent(ctx, s.model, genai.Text(BuildPrompt(text, profile.Directive)), config)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	audio := firstAudio(resp)
	if len(audio) == 0 {
		return nil, ErrEmptyResponse
	}

	s.logger.Debug("🎵 аудио успешно сгенерировано",
		zap.String("size", humanize.Bytes(uint64(len(audio)))),
		zap.Duration("duration", time.Since(start)))

	return audio, nil
}

// firstAudio извлекает встроенные данные первой части первого кандидата
func firstAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil
	}
	part := candidate.Content.Parts[0]
	if part == nil || part.InlineData == nil {
		return nil
	}
	return part.InlineData.Data
}

// classifyGeminiError разделяет ограничение квоты и остальные ошибки
func classifyGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Provider: providerGemini, Err: err}
	}

	code, status := apiErrorDetails(err)
	if code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" {
		return NewRateLimitedError(providerGemini, err)
	}
	if code == 0 {
		// ошибка не в формате API: ориентируемся на текст, как это делает SDK в сообщениях
		msg := err.Error()
		if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") {
			return NewRateLimitedError(providerGemini, err)
		}
	}

	return &ServiceError{Provider: providerGemini, StatusCode: code, Err: err}
}

func apiErrorDetails(err error) (int, string) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status
	}
	return 0, ""
}
