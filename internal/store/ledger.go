package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lingua-voice/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunRecorder журнал пакетных запусков. Ошибки журнала не должны прерывать генерацию.
type RunRecorder interface {
	StartRun(ctx context.Context, planned int) (string, error)
	RecordUnit(ctx context.Context, runID string, unit models.TextUnit, key string, outcome models.UnitOutcome, unitErr error) error
	FinishRun(ctx context.Context, runID string, result models.BatchRunResult) error
}

// NopRecorder журнал, который ничего не сохраняет (LEDGER_ENABLED=false)
type NopRecorder struct{}

func (NopRecorder) StartRun(ctx context.Context, planned int) (string, error) {
	return "", nil
}

func (NopRecorder) RecordUnit(ctx context.Context, runID string, unit models.TextUnit, key string, outcome models.UnitOutcome, unitErr error) error {
	return nil
}

func (NopRecorder) FinishRun(ctx context.Context, runID string, result models.BatchRunResult) error {
	return nil
}

// Ledger журнал запусков в PostgreSQL
type Ledger struct {
	db     *sql.DB
	logger *zap.Logger
	newID  func() uuid.UUID
	now    func() time.Time
}

// NewLedger создает журнал поверх открытого подключения
func NewLedger(db *sql.DB, logger *zap.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: logger,
		newID:  uuid.New,
		now:    time.Now,
	}
}

// StartRun создает запись о запуске и возвращает его идентификатор
func (l *Ledger) StartRun(ctx context.Context, planned int) (string, error) {
	query := `INSERT INTO generation_runs (id, started_at, planned) VALUES ($1, $2, $3)`

	id := l.newID()
	if _, err := l.db.ExecContext(ctx, query, id, l.now(), planned); err != nil {
		return "", fmt.Errorf("ошибка создания запуска: %w", err)
	}

	l.logger.Debug("запуск зарегистрирован в журнале",
		zap.String("run_id", id.String()),
		zap.Int("planned", planned))
	return id.String(), nil
}

// RecordUnit сохраняет итог одного предложения
func (l *Ledger) RecordUnit(ctx context.Context, runID string, unit models.TextUnit, key string, outcome models.UnitOutcome, unitErr error) error {
	query := `
		INSERT INTO generation_units (run_id, cache_key, text, day, pattern, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("некорректный идентификатор запуска %q: %w", runID, err)
	}

	errText := ""
	if unitErr != nil {
		errText = unitErr.Error()
	}

	_, err = l.db.ExecContext(ctx, query,
		id, key, unit.Text, unit.GroupID, unit.SubGroupID, string(outcome), errText, l.now())
	if err != nil {
		return fmt.Errorf("ошибка записи итога предложения: %w", err)
	}
	return nil
}

// FinishRun фиксирует итоговые счетчики запуска
func (l *Ledger) FinishRun(ctx context.Context, runID string, result models.BatchRunResult) error {
	query := `
		UPDATE generation_runs
		SET finished_at = $2, attempted = $3, succeeded = $4, cache_hits = $5, generated = $6, failed = $7
		WHERE id = $1`

	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("некорректный идентификатор запуска %q: %w", runID, err)
	}

	res, err := l.db.ExecContext(ctx, query,
		id, l.now(), result.Attempted, result.Succeeded, result.CacheHits, result.Generated, result.Failed)
	if err != nil {
		return fmt.Errorf("ошибка завершения запуска: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа обновленных строк: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("запуск %s не найден", runID)
	}

	l.logger.Info("запуск завершен в журнале",
		zap.String("run_id", runID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("attempted", result.Attempted))
	return nil
}

// Close закрывает подключение к базе данных
func (l *Ledger) Close() error {
	l.logger.Info("закрытие подключения к базе данных")
	return l.db.Close()
}
