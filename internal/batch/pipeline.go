package batch

import (
	"context"
	"fmt"

	"lingua-voice/internal/lesson"
	"lingua-voice/internal/storage"
	"lingua-voice/pkg/models"

	"go.uber.org/zap"
)

// PipelineConfig пути и фильтр одного запуска генерации
type PipelineConfig struct {
	LessonFile  string
	MappingFile string
	Day         string // пустой = все дни
}

// Pipeline загружает урок, озвучивает предложения и пишет таблицу соответствия.
// Реализует scheduler.Job.
type Pipeline struct {
	orchestrator *Orchestrator
	cfg          PipelineConfig
	logger       *zap.Logger
}

// NewPipeline создает конвейер генерации
func NewPipeline(orchestrator *Orchestrator, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		orchestrator: orchestrator,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run реализует scheduler.Job
func (p *Pipeline) Run(ctx context.Context) error {
	_, err := p.Execute(ctx)
	return err
}

// Execute выполняет один полный запуск. Ошибки чтения урока и записи таблицы фатальны,
// ошибки отдельных предложений только учитываются в результате.
func (p *Pipeline) Execute(ctx context.Context) (models.BatchRunResult, error) {
	doc, err := lesson.Load(p.cfg.LessonFile)
	if err != nil {
		return models.BatchRunResult{}, fmt.Errorf("ошибка загрузки учебных данных: %w", err)
	}

	units := lesson.Extract(doc)
	p.logger.Info(fmt.Sprintf("📝 найдено предложений: %d", len(units)),
		zap.String("file", p.cfg.LessonFile))

	selected := units
	if p.cfg.Day != "" {
		selected = lesson.Filter(units, p.cfg.Day)
		p.logger.Info("📅 фильтр по дню",
			zap.String("day", p.cfg.Day),
			zap.Int("selected", len(selected)))
	}

	result, err := p.orchestrator.RunBatch(ctx, selected)
	if err != nil {
		return result, err
	}

	// таблица строится по всем предложениям урока, независимо от итога генерации
	mapping, err := storage.WriteMapping(p.cfg.MappingFile, units, p.orchestrator.files.Ext)
	if err != nil {
		return result, fmt.Errorf("ошибка записи таблицы соответствия: %w", err)
	}

	p.logger.Info("📄 таблица соответствия записана",
		zap.String("file", p.cfg.MappingFile),
		zap.Int("entries", len(mapping)))

	return result, nil
}
