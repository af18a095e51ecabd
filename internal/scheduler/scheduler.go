package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler управляет запуском периодических задач.
// Задачи выполняются последовательно в одной горутине, запуски не перекрываются.
type Scheduler struct {
	logger *zap.Logger
	jobs   []namedJob
}

// Job интерфейс для периодических задач
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc позволяет использовать функцию как Job
type JobFunc func(ctx context.Context) error

// Run реализует Job
func (f JobFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type namedJob struct {
	name string
	job  Job
}

// NewScheduler создает новый планировщик задач
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		jobs:   make([]namedJob, 0),
	}
}

// AddJob добавляет задачу в планировщик
func (s *Scheduler) AddJob(name string, job Job) {
	s.jobs = append(s.jobs, namedJob{name: name, job: job})
}

// Start запускает задачи сразу, затем с указанным интервалом до отмены ctx
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.logger.Info("запуск планировщика задач",
		zap.Duration("interval", interval),
		zap.Int("jobs_count", len(s.jobs)))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Запускаем задачи сразу при старте
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("остановка планировщика задач")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce запускает все зарегистрированные задачи один раз и возвращает число ошибок
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for _, j := range s.jobs {
		if ctx.Err() != nil {
			return failed
		}

		start := time.Now()
		s.logger.Debug("запуск задачи", zap.String("job", j.name))

		if err := j.job.Run(ctx); err != nil {
			failed++
			s.logger.Error("ошибка выполнения задачи",
				zap.Error(err),
				zap.String("job", j.name))
			continue
		}

		s.logger.Debug("задача выполнена",
			zap.String("job", j.name),
			zap.Duration("duration", time.Since(start)))
	}
	return failed
}
