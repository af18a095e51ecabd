package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingua-voice/internal/api"
	"lingua-voice/internal/app"
	"lingua-voice/internal/config"
	"lingua-voice/internal/metrics"

	"go.uber.org/zap"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	logger, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("🚀 запуск сервера Lingua Voice")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Один клиент Gemini на процесс для синтеза и чата
	client := app.NewVertexClient(ctx, cfg, logger)

	synth, err := app.NewSynthesizer(cfg, client, logger)
	if err != nil {
		logger.Fatal("ошибка инициализации синтеза", zap.Error(err))
	}

	chat, err := app.NewChatClient(cfg, client, logger)
	if err != nil {
		logger.Fatal("ошибка создания AI клиента", zap.Error(err))
	}

	// Инициализация метрик
	metricsSystem := metrics.New(logger)
	metricsHandler := metrics.NewHandler(metricsSystem, logger, client.Configured)

	handler := api.NewHandler(synth, chat, metricsSystem, metricsHandler, api.Config{
		Voice:          cfg.TTS.Voice,
		RateLimitRPS:   cfg.App.TTSRateLimitRPS,
		RateLimitBurst: cfg.App.TTSRateLimitBurst,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP сервер запущен",
			zap.String("address", fmt.Sprintf("http://localhost:%d", cfg.App.Port)),
			zap.String("tts", "POST /api/tts { text: '...' }"),
			zap.String("chat", "POST /api/chat { message: '...', history: [...] }"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал завершения, начинаем graceful shutdown")
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Fatal("ошибка HTTP сервера", zap.Error(err))
		}
	}

	// Graceful shutdown HTTP сервера
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера", zap.Error(err))
	}

	logger.Info("сервер остановлен")
}
