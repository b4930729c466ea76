package story

import (
	"encoding/json"
	"strings"
)

// Story types.
const (
	TypeStory = "story"
	TypePoem  = "poem"
)

// Document is a story or poem loaded from the stories directory.
// Documents are immutable once loaded.
type Document struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Language        string          `json:"language"`
	AgeGroup        string          `json:"age_group"`
	Type            string          `json:"type"`
	Lesson          string          `json:"lesson,omitempty"`
	Moral           string          `json:"moral,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Theme           string          `json:"theme,omitempty"`
	DifficultyLevel string          `json:"difficulty_level,omitempty"`
	Characters      []Character     `json:"characters,omitempty"`
	DifficultWords  []DifficultWord `json:"difficult_words,omitempty"`
}

// Character is a named character of a story.
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DifficultWord is a vocabulary entry attached to a story.
type DifficultWord struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// Listing is the catalogue view of a document.
type Listing struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	AgeGroup string `json:"age_group"`
	Language string `json:"language"`
	Type     string `json:"type"`
}

// Listing returns the catalogue view of d.
func (d Document) Listing() Listing {
	return Listing{
		ID:       d.ID,
		Title:    d.Title,
		AgeGroup: d.AgeGroup,
		Language: d.Language,
		Type:     d.Type,
	}
}

// UnmarshalJSON accepts both "ageGroup" and "age_group" and applies defaults
// for language, type and title.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var raw struct {
		plain
		AgeGroupCamel string `json:"ageGroup"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Document(raw.plain)
	if d.AgeGroup == "" {
		d.AgeGroup = raw.AgeGroupCamel
	}
	if d.Title == "" {
		d.Title = "Untitled"
	}
	if d.Language == "" {
		d.Language = "urdu"
	}
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if d.Type == "" {
		d.Type = TypeStory
	}
	return nil
}
