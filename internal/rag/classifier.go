package rag

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Category is the kind of question being asked.
type Category string

const (
	CategoryTitle          Category = "title"
	CategoryLesson         Category = "lesson"
	CategoryCharacters     Category = "characters"
	CategoryMoral          Category = "moral"
	CategorySummary        Category = "summary"
	CategoryTheme          Category = "theme"
	CategoryDifficulty     Category = "difficulty"
	CategoryAgeGroup       Category = "age_group"
	CategoryDifficultWords Category = "difficult_words"
	CategoryContent        Category = "content"
)

type keywordRule struct {
	category Category
	keywords []string
}

// keywordRules are tested in order; the first rule with a matching keyword wins.
// "سبق" appears under both lesson and moral, so moral is never chosen for it.
var keywordRules = []keywordRule{
	{CategoryTitle, []string{"عنوان", "نام", "کا نام", "کا عنوان", "کہانی کا عنوان", "کہانی کا نام"}},
	{CategoryLesson, []string{"سبق", "سیکھنا", "سیکھتے", "سیکھا", "کہانی کا سبق", "کہانی سے سبق"}},
	{CategoryCharacters, []string{"کردار", "کرداروں", "کون کون", "کون ہے", "کہانی کے کردار"}},
	{CategoryMoral, []string{"سبق", "پیغام", "مقصد", "نتیجہ", "کہانی کا پیغام"}},
	{CategorySummary, []string{"خلاصہ", "کہانی کا خلاصہ", "کہانی کا مختصر بیان"}},
	{CategoryTheme, []string{"تھیم", "موضوع", "کہانی کا موضوع"}},
	{CategoryDifficulty, []string{"مشکل", "آسان", "کہانی کی مشکل"}},
	{CategoryAgeGroup, []string{"عمر", "کہانی کس عمر کے لیے ہے"}},
	{CategoryDifficultWords, []string{"مشکل الفاظ", "مشکل لفظ", "لفظوں کا مطلب"}},
}

// exactQuestions are the canonical benchmark phrasings answered from story metadata.
var exactQuestions = map[string]Category{
	"کہانی کا عنوان کیا ہے؟":          CategoryTitle,
	"کہانی کا نام کیا ہے؟":            CategoryTitle,
	"کہانی سے کیا سبق ملتا ہے؟":       CategoryLesson,
	"کہانی کا سبق کیا ہے؟":            CategoryLesson,
	"کہانی کے کردار کون کون ہیں؟":     CategoryCharacters,
	"کہانی میں کون کون ہیں؟":          CategoryCharacters,
	"کہانی کا پیغام کیا ہے؟":          CategoryMoral,
	"کہانی کا مقصد کیا ہے؟":           CategoryMoral,
	"کہانی کا خلاصہ کیا ہے؟":          CategorySummary,
	"کہانی کا مختصر بیان کیا ہے؟":     CategorySummary,
	"کہانی کے مشکل الفاظ کون سے ہیں؟": CategoryDifficultWords,
	"مشکل لفظوں کا مطلب کیا ہے؟":      CategoryDifficultWords,
}

// normalize folds case and composes the text so equivalent spellings compare equal.
func normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// Classify returns the category of question by keyword, or CategoryContent.
func Classify(question string) Category {
	q := normalize(question)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.category
			}
		}
	}
	return CategoryContent
}

// IsExactQuestion reports whether the trimmed question is a benchmark phrasing.
func IsExactQuestion(question string) (Category, bool) {
	cat, ok := exactQuestions[norm.NFC.String(strings.TrimSpace(question))]
	return cat, ok
}
