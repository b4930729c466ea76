package rag

import (
	"fmt"
	"strings"

	"kahani-ai/internal/story"
)

// DirectAnswer reads the metadata field of doc that answers a question of category cat.
// Returns ErrNotFound if the field is empty or cat has no field.
func DirectAnswer(doc story.Document, cat Category) (string, error) {
	var value string
	switch cat {
	case CategoryTitle:
		value = doc.Title
	case CategoryLesson:
		value = doc.Lesson
	case CategoryCharacters:
		names := make([]string, 0, len(doc.Characters))
		for _, c := range doc.Characters {
			if c.Name != "" {
				names = append(names, c.Name)
			}
		}
		value = strings.Join(names, "، ")
	case CategoryMoral:
		value = doc.Moral
	case CategorySummary:
		value = doc.Summary
	case CategoryTheme:
		value = doc.Theme
	case CategoryDifficulty:
		value = doc.DifficultyLevel
	case CategoryAgeGroup:
		value = doc.AgeGroup
	case CategoryDifficultWords:
		lines := make([]string, 0, len(doc.DifficultWords))
		for _, w := range doc.DifficultWords {
			lines = append(lines, w.Word+" - "+w.Meaning)
		}
		value = strings.Join(lines, "\n")
	default:
		return "", fmt.Errorf("category %q: %w", cat, ErrNotFound)
	}

	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("story %s has no %s: %w", doc.ID, cat, ErrNotFound)
	}
	return value, nil
}
