package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lingua-voice/internal/cachekey"
	"lingua-voice/pkg/models"
)

// MappingFileName имя файла таблицы соответствия в директории аудио
const MappingFileName = "audio_mapping.json"

// DefaultMappingPath путь к таблице соответствия внутри директории аудио
func DefaultMappingPath(audioDir string) string {
	return filepath.Join(audioDir, MappingFileName)
}

// BuildMapping строит таблицу текст -> имя файла по всем предложениям,
// независимо от того, удалась ли генерация аудио в этом запуске.
func BuildMapping(units []models.TextUnit, ext string) models.MappingTable {
	mapping := make(models.MappingTable, len(units))
	for _, unit := range units {
		mapping[unit.Text] = cachekey.Filename(unit.Text, ext)
	}
	return mapping
}

// WriteMapping строит таблицу соответствия и полностью перезаписывает файл path
func WriteMapping(path string, units []models.TextUnit, ext string) (models.MappingTable, error) {
	mapping := BuildMapping(units, ext)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mapping); err != nil {
		return nil, fmt.Errorf("ошибка сериализации таблицы соответствия: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории для таблицы соответствия: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("ошибка записи таблицы соответствия %s: %w", path, err)
	}

	return mapping, nil
}
