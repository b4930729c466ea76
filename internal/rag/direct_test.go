package rag

import (
	"errors"
	"testing"

	"kahani-ai/internal/story"
)

func TestDirectAnswer(t *testing.T) {
	doc := story.Document{
		ID:              "root/zakhmi-parinda",
		Title:           "زخمی پرندہ",
		Lesson:          "ہمیں جانوروں پر رحم کرنا چاہیے۔",
		Summary:         "علی ایک زخمی پرندے کی مدد کرتا ہے۔",
		AgeGroup:        "5-7",
		DifficultyLevel: "آسان",
		Characters:      []story.Character{{Name: "علی"}, {Name: "احمد"}},
		DifficultWords: []story.DifficultWord{
			{Word: "زخمی", Meaning: "چوٹ کھایا ہوا"},
			{Word: "مرہم", Meaning: "دوا"},
		},
	}

	tests := []struct {
		category Category
		want     string
		wantErr  error
	}{
		{CategoryTitle, "زخمی پرندہ", nil},
		{CategoryLesson, "ہمیں جانوروں پر رحم کرنا چاہیے۔", nil},
		{CategoryCharacters, "علی، احمد", nil},
		{CategorySummary, "علی ایک زخمی پرندے کی مدد کرتا ہے۔", nil},
		{CategoryAgeGroup, "5-7", nil},
		{CategoryDifficulty, "آسان", nil},
		{CategoryDifficultWords, "زخمی - چوٹ کھایا ہوا\nمرہم - دوا", nil},
		{CategoryMoral, "", ErrNotFound},
		{CategoryTheme, "", ErrNotFound},
		{CategoryContent, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			got, err := DirectAnswer(doc, tt.category)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("DirectAnswer() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DirectAnswer() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DirectAnswer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDirectAnswer_NoCharacters(t *testing.T) {
	if _, err := DirectAnswer(story.Document{ID: "root/x"}, CategoryCharacters); !errors.Is(err, ErrNotFound) {
		t.Errorf("DirectAnswer() error = %v, want ErrNotFound", err)
	}
}
