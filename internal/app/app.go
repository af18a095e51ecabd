// Package app собирает общие зависимости сервера и генератора из конфигурации
package app

import (
	"context"
	"fmt"

	"lingua-voice/internal/ai"
	"lingua-voice/internal/config"
	"lingua-voice/internal/logging"
	"lingua-voice/internal/migrations"
	"lingua-voice/internal/retry"
	"lingua-voice/internal/store"
	"lingua-voice/internal/tts"
	"lingua-voice/internal/vertex"

	"go.uber.org/zap"
)

// NewLogger создает логгер процесса по настройкам приложения
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level: cfg.App.GetLogLevel(),
		Dir:   "logs",
	})
}

// NewVertexClient создает общий клиент Gemini
func NewVertexClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) *vertex.Client {
	return vertex.NewClient(ctx, vertex.Config{
		Project:         cfg.Google.Project,
		Location:        cfg.Google.Location,
		CredentialsFile: cfg.Google.CredentialsFile,
		APIKey:          cfg.Google.APIKey,
	}, logger)
}

// NewSynthesizer создает сервис синтеза выбранного провайдера
func NewSynthesizer(cfg *config.Config, client *vertex.Client, logger *zap.Logger) (tts.TTSService, error) {
	svc, err := tts.NewService(tts.Config{
		Provider:     cfg.TTS.Provider,
		Model:        cfg.TTS.Model,
		PiperBaseURL: cfg.TTS.PiperBaseURL,
	}, client, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания сервиса синтеза: %w", err)
	}

	logger.Info("🎤 сервис синтеза инициализирован",
		zap.String("provider", cfg.TTS.Provider),
		zap.String("model", cfg.TTS.Model))
	return svc, nil
}

// NewChatClient создает чат-клиент поверх общего клиента Gemini
func NewChatClient(cfg *config.Config, client *vertex.Client, logger *zap.Logger) (ai.AIClient, error) {
	logger.Info("конфигурация AI",
		zap.String("model", cfg.Chat.Model),
		zap.Int("max_tokens", cfg.Chat.MaxTokens))

	return ai.NewAIClient(&ai.AIConfig{
		Provider:    "gemini",
		Model:       cfg.Chat.Model,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
	}, client, logger)
}

// RetryPolicy политика повторов из конфигурации
func RetryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.TTS.MaxAttempts,
		BaseDelay:   cfg.TTS.BaseDelay,
	}
}

// OpenRecorder открывает журнал генерации. При LEDGER_ENABLED=false возвращает
// store.NopRecorder. Функция закрытия всегда не nil.
func OpenRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.RunRecorder, func(), error) {
	if !cfg.Database.LedgerEnabled {
		return store.NopRecorder{}, func() {}, nil
	}

	db, err := store.Open(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, func() {}, err
	}

	if err := migrations.RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, func() {}, err
	}

	ledger := store.NewLedger(db, logger)
	return ledger, func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("ошибка закрытия базы данных", zap.Error(err))
		}
	}, nil
}
