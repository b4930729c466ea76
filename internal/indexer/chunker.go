package indexer

import (
	"strings"
	"unicode"

	"kahani-ai/internal/story"
)

// TitlePrefix starts the first indexed sentence of every document so the title itself is retrievable.
const TitlePrefix = "عنوان: "

// DefaultChunkWords is the default word budget for ChunkText.
const DefaultChunkWords = 200

func isTerminator(r rune) bool {
	switch r {
	case '۔', '.', '!', '?', '؟':
		return true
	}
	return false
}

func isClosingQuote(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '»', ')', ']':
		return true
	}
	return false
}

// SplitSentences splits text into sentences.
// Boundaries are the Urdu full stop (۔), '.', '!', '?', the Urdu question mark (؟)
// and line breaks. Terminators stay attached to their sentence, and a run of
// terminators and closing quotes stays together. A '.' directly followed by a
// non-space character (as in "3.5") is not a boundary. Sentences are trimmed
// and empty sentences are dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' || r == '\r' {
			flush()
			continue
		}

		current.WriteRune(r)
		if !isTerminator(r) {
			continue
		}

		if r == '.' && i+1 < len(runes) {
			next := runes[i+1]
			if !unicode.IsSpace(next) && !isTerminator(next) && !isClosingQuote(next) {
				continue
			}
		}

		for i+1 < len(runes) && (isTerminator(runes[i+1]) || isClosingQuote(runes[i+1])) {
			i++
			current.WriteRune(runes[i])
		}
		flush()
	}
	flush()

	return sentences
}

// ChunkText groups whole sentences into chunks of at most maxWords words.
// A sentence is never split: one longer than maxWords becomes its own chunk.
// Sentences inside a chunk are joined with a single space.
func ChunkText(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultChunkWords
	}

	var chunks []string
	var current []string
	currentWords := 0

	for _, sentence := range SplitSentences(text) {
		words := len(strings.Fields(sentence))
		if len(current) > 0 && currentWords+words > maxWords {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentWords = 0
		}
		current = append(current, sentence)
		currentWords += words
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// IndexText is the text indexed for a document: a title line followed by the content.
func IndexText(doc story.Document) string {
	return TitlePrefix + doc.Title + "\n\n" + doc.Content
}

// DocumentChunks splits a document into one chunk per sentence of its IndexText.
func DocumentChunks(doc story.Document) []Chunk {
	sentences := SplitSentences(IndexText(doc))
	chunks := make([]Chunk, len(sentences))
	for i, sentence := range sentences {
		chunks[i] = Chunk{
			Text:    sentence,
			StoryID: doc.ID,
			Title:   doc.Title,
			Index:   i,
			Total:   len(sentences),
		}
	}
	return chunks
}
