package tts

import (
	"fmt"

	"lingua-voice/internal/vertex"

	"go.uber.org/zap"
)

// Config настройки выбора провайдера синтеза
type Config struct {
	Provider     string
	Model        string
	PiperBaseURL string
}

// NewService создает TTS сервис на основе конфигурации
func NewService(cfg Config, generator vertex.ContentGenerator, logger *zap.Logger) (TTSService, error) {
	switch cfg.Provider {
	case "", providerGemini:
		return NewGeminiService(logger, generator, cfg.Model), nil
	case providerPiper:
		return NewPiperService(logger, cfg.PiperBaseURL), nil
	default:
		return nil, fmt.Errorf("неподдерживаемый TTS провайдер: %s. Поддерживаются: 'gemini', 'piper'", cfg.Provider)
	}
}
