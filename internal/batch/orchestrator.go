// Package batch последовательно озвучивает предложения урока с кэшем на диске
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lingua-voice/internal/cachekey"
	"lingua-voice/internal/metrics"
	"lingua-voice/internal/retry"
	"lingua-voice/internal/storage"
	"lingua-voice/internal/store"
	"lingua-voice/internal/tts"
	"lingua-voice/pkg/models"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DefaultPacingDelay пауза между предложениями (лимит API около 30 запросов в минуту)
const DefaultPacingDelay = 2 * time.Second

// Options параметры пакетного запуска
type Options struct {
	PacingDelay  time.Duration
	Force        bool   // перегенерировать даже при наличии файла
	Emotion      bool   // инструкция подачи по категории паттерна
	Voice        string // голос обычного режима
	EmotionVoice string // голос режима с эмоциями
}

// Deps зависимости оркестратора
type Deps struct {
	Synthesizer tts.TTSService
	Store       *storage.FileStore
	Retry       *retry.Controller
	Recorder    store.RunRecorder // nil = журнал отключен
	Metrics     *metrics.Metrics  // nil = без метрик
	Sleep       retry.Sleeper     // nil = retry.Sleep
}

// Orchestrator обрабатывает предложения строго по одному: не больше одного запроса в полете
type Orchestrator struct {
	synth    tts.TTSService
	files    *storage.FileStore
	retry    *retry.Controller
	recorder store.RunRecorder
	metrics  *metrics.Metrics
	sleep    retry.Sleeper
	opts     Options
	logger   *zap.Logger
}

// NewOrchestrator создает оркестратор пакетной генерации
func NewOrchestrator(deps Deps, opts Options, logger *zap.Logger) *Orchestrator {
	if deps.Recorder == nil {
		deps.Recorder = store.NopRecorder{}
	}
	if deps.Sleep == nil {
		deps.Sleep = retry.Sleep
	}
	if deps.Retry == nil {
		deps.Retry = retry.NewController(retry.DefaultPolicy(), deps.Sleep, logger)
	}
	if opts.PacingDelay < 0 {
		opts.PacingDelay = 0
	}
	if deps.Metrics != nil {
		m := deps.Metrics
		deps.Retry.OnRetry(func(int, time.Duration) { m.RecordRetryWait() })
	}

	return &Orchestrator{
		synth:    deps.Synthesizer,
		files:    deps.Store,
		retry:    deps.Retry,
		recorder: deps.Recorder,
		metrics:  deps.Metrics,
		sleep:    deps.Sleep,
		opts:     opts,
		logger:   logger,
	}
}

// RunBatch озвучивает предложения по порядку. Ошибка одного предложения учитывается
// в результате и не прерывает запуск. Ошибка возвращается только при отмене ctx
// (вместе с частичным результатом) или если не удалось создать директорию аудио.
func (o *Orchestrator) RunBatch(ctx context.Context, units []models.TextUnit) (models.BatchRunResult, error) {
	var result models.BatchRunResult

	if err := o.files.EnsureDir(); err != nil {
		return result, err
	}

	runID, err := o.recorder.StartRun(ctx, len(units))
	if err != nil {
		o.logger.Warn("⚠️ журнал генерации недоступен", zap.Error(err))
	}

	total := len(units)
	o.logger.Info("📝 начало пакетной генерации",
		zap.Int("total", total),
		zap.Bool("force", o.opts.Force),
		zap.Bool("emotion", o.opts.Emotion))

	// ключи, уже перегенерированные в этом запуске в режиме Force
	regenerated := make(map[string]struct{})

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return o.finish(runID, result, err)
		}

		key := cachekey.Derive(unit.Text)
		o.logger.Info(fmt.Sprintf("[%d/%d] Day %s - Pattern %s", i+1, total, unit.GroupID, unit.SubGroupID),
			zap.String("text", unit.Text),
			zap.String("cache_key", key))

		_, done := regenerated[key]
		outcome, unitErr := o.processUnit(ctx, unit, key, !o.opts.Force || done)
		if unitErr != nil && ctx.Err() != nil {
			return o.finish(runID, result, ctx.Err())
		}
		if outcome == models.OutcomeGenerated {
			regenerated[key] = struct{}{}
		}

		result.Record(outcome)
		o.recordUnit(ctx, runID, unit, key, outcome, unitErr)

		if err := o.sleep(ctx, o.opts.PacingDelay); err != nil {
			return o.finish(runID, result, err)
		}
	}

	return o.finish(runID, result, nil)
}

// processUnit проверяет кэш и при промахе синтезирует и сохраняет аудио
func (o *Orchestrator) processUnit(ctx context.Context, unit models.TextUnit, key string, checkCache bool) (models.UnitOutcome, error) {
	if checkCache {
		exists, err := o.files.Exists(key)
		if err != nil {
			o.logger.Error("❌ ошибка проверки кэша", zap.String("cache_key", key), zap.Error(err))
			return models.OutcomeFailed, err
		}
		if exists {
			o.logger.Info("⏭️ уже существует", zap.String("file", o.files.Filename(key)))
			return models.OutcomeCacheHit, nil
		}
	}

	profile := o.profileFor(unit)

	start := time.Now()
	audio, err := o.retry.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return o.synth.SynthesizeText(ctx, unit.Text, profile)
	})
	o.recordSynthesis(err, time.Since(start))

	if err != nil {
		o.logUnitFailure(unit, key, err)
		return models.OutcomeFailed, err
	}

	path, err := o.files.Save(key, audio)
	if err != nil {
		o.logger.Error("❌ ошибка сохранения аудио", zap.String("cache_key", key), zap.Error(err))
		return models.OutcomeFailed, err
	}

	o.logger.Info("✅ создан",
		zap.String("file", path),
		zap.String("size", humanize.Bytes(uint64(len(audio)))))
	return models.OutcomeGenerated, nil
}

// profileFor выбирает голос и инструкцию подачи для предложения
func (o *Orchestrator) profileFor(unit models.TextUnit) tts.VoiceProfile {
	if !o.opts.Emotion {
		return tts.VoiceProfile{Voice: o.opts.Voice, Directive: tts.DirectiveNatural}
	}
	category := tts.ResolveCategory(unit.Category, unit.PatternTitle)
	return tts.VoiceProfile{
		Voice:     o.opts.EmotionVoice,
		Directive: tts.DirectiveFor(category),
	}
}

func (o *Orchestrator) logUnitFailure(unit models.TextUnit, key string, err error) {
	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("text", unit.Text),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, tts.ErrRetriesExhausted):
		o.logger.Error("❌ превышено количество повторов", fields...)
	case tts.IsEmptyResponse(err):
		o.logger.Error("❌ нет ответа", fields...)
	default:
		o.logger.Error("❌ ошибка синтеза", fields...)
	}
}

func (o *Orchestrator) recordSynthesis(err error, elapsed time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordSynthesis(metrics.SourceBatch, tts.StatusLabel(err), elapsed.Seconds())
}

func (o *Orchestrator) recordUnit(ctx context.Context, runID string, unit models.TextUnit, key string, outcome models.UnitOutcome, unitErr error) {
	if o.metrics != nil {
		o.metrics.RecordUnit(string(outcome))
	}
	if runID == "" {
		return
	}
	if err := o.recorder.RecordUnit(ctx, runID, unit, key, outcome, unitErr); err != nil {
		o.logger.Warn("⚠️ ошибка записи в журнал генерации", zap.String("cache_key", key), zap.Error(err))
	}
}

func (o *Orchestrator) finish(runID string, result models.BatchRunResult, runErr error) (models.BatchRunResult, error) {
	if runID != "" {
		// журнал фиксируем даже после отмены основного контекста
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.recorder.FinishRun(ctx, runID, result); err != nil {
			o.logger.Warn("⚠️ ошибка завершения записи в журнале", zap.Error(err))
		}
	}

	if runErr != nil {
		o.logger.Warn("пакетная генерация прервана",
			zap.Int("succeeded", result.Succeeded),
			zap.Int("attempted", result.Attempted),
			zap.Error(runErr))
		return result, runErr
	}

	o.logger.Info(fmt.Sprintf("✅ готово: %d/%d файлов", result.Succeeded, result.Attempted),
		zap.Int("cache_hits", result.CacheHits),
		zap.Int("generated", result.Generated),
		zap.Int("failed", result.Failed))
	return result, nil
}
