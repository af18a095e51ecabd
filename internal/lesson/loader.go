package lesson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lingua-voice/pkg/models"

	"gopkg.in/yaml.v3"
)

// MalformedLessonError описывает структурную ошибку в учебных данных
type MalformedLessonError struct {
	Path   string
	Field  string
	Reason string
}

func (e *MalformedLessonError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("некорректные учебные данные %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("некорректные учебные данные %s: поле %s: %s", e.Path, e.Field, e.Reason)
}

// IsMalformed проверяет, что ошибка вызвана структурой учебных данных
func IsMalformed(err error) bool {
	var malformed *MalformedLessonError
	return errors.As(err, &malformed)
}

// Load читает и валидирует учебные данные из JSON или YAML файла
func Load(path string) (*models.Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения учебных данных: %w", err)
	}
	return Parse(path, data)
}

// Parse декодирует и валидирует учебные данные. Формат определяется по расширению path.
func Parse(path string, data []byte) (*models.Lesson, error) {
	var (
		root   map[string]any
		lesson models.Lesson
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, &MalformedLessonError{Path: path, Reason: err.Error()}
		}
		if err := checkDays(path, root); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &lesson); err != nil {
			return nil, &MalformedLessonError{Path: path, Reason: err.Error()}
		}
	default:
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, &MalformedLessonError{Path: path, Reason: err.Error()}
		}
		if err := checkDays(path, root); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&lesson); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, &MalformedLessonError{Path: path, Field: typeErr.Field, Reason: "неверный тип: ожидался " + typeErr.Type.String()}
			}
			return nil, &MalformedLessonError{Path: path, Reason: err.Error()}
		}
	}

	if err := validate(path, &lesson); err != nil {
		return nil, err
	}

	return &lesson, nil
}

// checkDays проверяет наличие верхнеуровневой коллекции days
func checkDays(path string, root map[string]any) error {
	days, ok := root["days"]
	if !ok || days == nil {
		return &MalformedLessonError{Path: path, Field: "days", Reason: "отсутствует"}
	}
	if _, ok := days.([]any); !ok {
		return &MalformedLessonError{Path: path, Field: "days", Reason: "должно быть списком"}
	}
	return nil
}

// validate проверяет обязательные идентификаторы дней и паттернов
func validate(path string, lesson *models.Lesson) error {
	for i, day := range lesson.Days {
		if day.Day == "" {
			return &MalformedLessonError{Path: path, Field: fmt.Sprintf("days[%d].day", i), Reason: "отсутствует идентификатор дня"}
		}
		for j, pattern := range day.Patterns {
			if pattern.ID == "" {
				return &MalformedLessonError{Path: path, Field: fmt.Sprintf("days[%d].patterns[%d].id", i, j), Reason: "отсутствует идентификатор паттерна"}
			}
		}
	}
	return nil
}
