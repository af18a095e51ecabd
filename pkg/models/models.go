package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lesson представляет документ с учебными данными (data/patterns.json)
type Lesson struct {
	Days []Day `json:"days" yaml:"days"`
}

// Day представляет учебный день с набором паттернов
type Day struct {
	Day      Identifier `json:"day" yaml:"day"`
	Title    string     `json:"title" yaml:"title"`
	Patterns []Pattern  `json:"patterns" yaml:"patterns"`
}

// Pattern представляет грамматический паттерн ("I'm going to ~") с примерами
type Pattern struct {
	ID       Identifier `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"` // необязательная явная категория подачи
	Examples []Example  `json:"examples" yaml:"examples"`
}

// Example представляет пример предложения
type Example struct {
	English string `json:"english" yaml:"english"`
	Korean  string `json:"korean,omitempty" yaml:"korean,omitempty"`
}

// Identifier идентификатор дня или паттерна.
// В учебных данных встречаются как числа, так и строки, поэтому храним строкой.
type Identifier string

// UnmarshalJSON принимает число или строку
func (id *Identifier) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("идентификатор должен быть числом или строкой: %s", raw)
	}
	*id = Identifier(n.String())
	return nil
}

// UnmarshalYAML принимает скалярное значение любого типа
func (id *Identifier) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("строка %d: идентификатор должен быть скаляром", value.Line)
	}
	if value.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = Identifier(value.Value)
	return nil
}

// String возвращает строковое представление
func (id Identifier) String() string {
	return string(id)
}

// TextUnit одно предложение для озвучивания вместе с его происхождением
type TextUnit struct {
	Text         string `json:"text"`
	GroupID      string `json:"group_id"`      // день
	SubGroupID   string `json:"sub_group_id"`  // паттерн
	PatternTitle string `json:"pattern_title"` // заголовок паттерна, например "I'm going to ~"
	Category     string `json:"category"`      // явная категория подачи, может быть пустой
}

// MappingTable соответствие текст -> имя аудиофайла
type MappingTable map[string]string

// UnitOutcome итог обработки одного предложения в пакетном запуске
type UnitOutcome string

const (
	OutcomeCacheHit  UnitOutcome = "cache_hit"
	OutcomeGenerated UnitOutcome = "generated"
	OutcomeFailed    UnitOutcome = "failed"
)

// BatchRunResult счетчики одного пакетного запуска, не сохраняются между запусками
type BatchRunResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	CacheHits int `json:"cache_hits"`
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
}

// Record учитывает итог одного предложения
func (r *BatchRunResult) Record(outcome UnitOutcome) {
	r.Attempted++
	switch outcome {
	case OutcomeCacheHit:
		r.CacheHits++
		r.Succeeded++
	case OutcomeGenerated:
		r.Generated++
		r.Succeeded++
	case OutcomeFailed:
		r.Failed++
	}
}
