package lesson

import (
	"lingua-voice/pkg/models"
)

// Extract возвращает плоский список предложений в порядке день -> паттерн -> пример.
// Пропускаются только примеры без английского текста, строка из пробелов озвучивается как есть.
func Extract(lesson *models.Lesson) []models.TextUnit {
	if lesson == nil {
		return nil
	}

	units := make([]models.TextUnit, 0)
	for _, day := range lesson.Days {
		for _, pattern := range day.Patterns {
			for _, example := range pattern.Examples {
				if example.English == "" {
					continue
				}
				units = append(units, models.TextUnit{
					Text:         example.English,
					GroupID:      day.Day.String(),
					SubGroupID:   pattern.ID.String(),
					PatternTitle: pattern.Title,
					Category:     pattern.Category,
				})
			}
		}
	}

	return units
}

// Filter оставляет только предложения указанного дня. Пустой day означает все дни.
func Filter(units []models.TextUnit, day string) []models.TextUnit {
	if day == "" {
		return units
	}

	filtered := make([]models.TextUnit, 0, len(units))
	for _, unit := range units {
		if unit.GroupID == day {
			filtered = append(filtered, unit)
		}
	}
	return filtered
}
