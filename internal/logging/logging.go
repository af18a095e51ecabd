// Package logging собирает zap логгер процесса
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Options параметры логгера
type Options struct {
	Level zap.AtomicLevel
	Dir   string // каталог для app.log и error.log, пустой = только консоль
}

// New создает логгер: консоль + logs/app.log, ошибки в stderr + logs/error.log
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = opts.Level
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	if opts.Dir != "" {
		// Создаем директорию для логов если её нет
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
		}
		config.OutputPaths = append(config.OutputPaths, filepath.Join(opts.Dir, "app.log"))
		config.ErrorOutputPaths = append(config.ErrorOutputPaths, filepath.Join(opts.Dir, "error.log"))
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки логгера: %w", err)
	}
	return logger, nil
}
