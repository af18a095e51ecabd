package ai

import (
	"fmt"

	"lingua-voice/internal/vertex"

	"go.uber.org/zap"
)

// NewAIClient создает новый AI клиент на основе конфигурации
func NewAIClient(cfg *AIConfig, generator vertex.ContentGenerator, logger *zap.Logger) (AIClient, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiClient(generator, cfg, logger), nil
	default:
		return nil, fmt.Errorf("неподдерживаемый AI провайдер: %s. Поддерживается: 'gemini'", cfg.Provider)
	}
}
