package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingua-voice/internal/app"
	"lingua-voice/internal/batch"
	"lingua-voice/internal/config"
	"lingua-voice/internal/metrics"
	"lingua-voice/internal/retry"
	"lingua-voice/internal/scheduler"
	"lingua-voice/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataFile    string
	outDir      string
	mappingFile string
	day         string
	force       bool
	emotion     bool
	watch       bool
	interval    time.Duration

	rootCmd = &cobra.Command{
		Use:           "generate",
		Short:         "Генерация аудио для всех английских примеров урока",
		Long:          "Озвучивает каждое предложение из учебных данных через Gemini TTS, пропуская уже созданные файлы, и записывает таблицу соответствия текст -> файл.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          execute,
	}
)

func init() {
	rootCmd.Flags().StringVar(&dataFile, "data", "", "файл учебных данных (по умолчанию LESSON_DATA_FILE)")
	rootCmd.Flags().StringVar(&outDir, "out", "", "директория аудио (по умолчанию AUDIO_OUTPUT_DIR)")
	rootCmd.Flags().StringVar(&mappingFile, "mapping", "", "файл таблицы соответствия (по умолчанию <out>/audio_mapping.json)")
	rootCmd.Flags().StringVar(&day, "day", "", "озвучить только указанный день")
	rootCmd.Flags().BoolVar(&force, "force", false, "перегенерировать существующие файлы")
	rootCmd.Flags().BoolVar(&emotion, "emotion", false, "подача с эмоциями по категории паттерна")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "повторять генерацию с интервалом до остановки")
	rootCmd.Flags().DurationVar(&interval, "interval", 10*time.Minute, "интервал повторной генерации в режиме --watch")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func execute(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	applyFlags(cmd, cfg)

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	defer logger.Sync()

	logger.Info("🎤 генератор аудио Gemini TTS",
		zap.String("data", cfg.Paths.LessonDataFile),
		zap.String("out", cfg.Paths.AudioOutputDir))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := app.NewVertexClient(ctx, cfg, logger)
	synth, err := app.NewSynthesizer(cfg, client, logger)
	if err != nil {
		return err
	}

	recorder, closeRecorder, err := app.OpenRecorder(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("ошибка инициализации журнала генерации: %w", err)
	}
	defer closeRecorder()

	m := metrics.New(logger)
	orchestrator := batch.NewOrchestrator(batch.Deps{
		Synthesizer: synth,
		Store:       storage.NewFileStore(cfg.Paths.AudioOutputDir, cfg.Paths.AudioExt),
		Retry:       retry.NewController(app.RetryPolicy(cfg), retry.Sleep, logger),
		Recorder:    recorder,
		Metrics:     m,
	}, batch.Options{
		PacingDelay:  cfg.TTS.PacingDelay,
		Force:        force,
		Emotion:      cfg.TTS.EmotionEnabled,
		Voice:        cfg.TTS.Voice,
		EmotionVoice: cfg.TTS.EmotionVoice,
	}, logger)

	pipeline := batch.NewPipeline(orchestrator, batch.PipelineConfig{
		LessonFile:  cfg.Paths.LessonDataFile,
		MappingFile: cfg.Paths.MappingFile,
		Day:         day,
	}, logger)

	if watch {
		sched := scheduler.NewScheduler(logger)
		sched.AddJob("generate", scheduler.JobFunc(func(ctx context.Context) error {
			err := pipeline.Run(ctx)
			pushMetrics(cfg, m, logger)
			return err
		}))
		sched.Start(ctx, interval)
		return nil
	}

	result, err := pipeline.Execute(ctx)
	pushMetrics(cfg, m, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Готово: %d/%d файлов (из кэша: %d, создано: %d, ошибок: %d)\n",
		result.Succeeded, result.Attempted, result.CacheHits, result.Generated, result.Failed)
	return nil
}

// applyFlags переопределяет конфигурацию явно заданными флагами
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Paths.LessonDataFile = dataFile
	}
	if flags.Changed("out") {
		cfg.Paths.AudioOutputDir = outDir
		if !flags.Changed("mapping") && os.Getenv("AUDIO_MAPPING_FILE") == "" {
			cfg.Paths.MappingFile = storage.DefaultMappingPath(outDir)
		}
	}
	if flags.Changed("mapping") {
		cfg.Paths.MappingFile = mappingFile
	}
	if flags.Changed("emotion") {
		cfg.TTS.EmotionEnabled = emotion
	}
}

// pushMetrics отправляет метрики запуска в Pushgateway, если он настроен
func pushMetrics(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) {
	if cfg.App.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Push(ctx, cfg.App.PushgatewayURL, metrics.PushJob); err != nil {
		logger.Warn("⚠️ метрики не отправлены", zap.Error(err))
	}
}
