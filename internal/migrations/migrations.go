package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var embedMigrations embed.FS

const migrationDir = "sql"

func setup() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ошибка установки диалекта: %w", err)
	}
	return nil
}

// RunMigrations применяет встроенные миграции журнала генерации
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	logger.Info("начало применения миграций")

	if err := setup(); err != nil {
		return err
	}

	if err := goose.Up(db, migrationDir); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	logger.Info("миграции успешно применены")
	return nil
}

// GetMigrationStatus выводит статус миграций
func GetMigrationStatus(db *sql.DB, logger *zap.Logger) error {
	logger.Info("проверка статуса миграций")

	if err := setup(); err != nil {
		return err
	}

	if err := goose.Status(db, migrationDir); err != nil {
		return fmt.Errorf("ошибка получения статуса миграций: %w", err)
	}

	logger.Info("статус миграций получен")
	return nil
}

// Files возвращает имена встроенных файлов миграций
func Files() ([]string, error) {
	entries, err := embedMigrations.ReadDir(migrationDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения встроенных миграций: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
