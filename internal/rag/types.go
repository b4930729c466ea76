package rag

// Sources name the stage that produced an answer.
const (
	SourceExactQuestion      = "exact_question"
	SourceKeyword            = "keyword"
	SourceSentenceCompletion = "sentence_completion"
	SourceGeneration         = "generation"
)

// Answer is the result of answering one question.
// When Success is true, Response is non-empty and passed validation.
type Answer struct {
	// Success reports whether Response holds an answer.
	Success bool `json:"success"`
	// Response is the answer text.
	Response string `json:"response,omitempty"`
	// Context is the story text the answer was derived from.
	Context string `json:"context,omitempty"`
	// Error is a human-readable failure message.
	Error string `json:"error,omitempty"`
	// StoryTitle is the title of the story the question was asked about, if known.
	StoryTitle string `json:"story_title,omitempty"`
	// QuestionType is the classified category of the question.
	QuestionType Category `json:"question_type,omitempty"`
	// Source is the stage that answered.
	Source string `json:"source,omitempty"`
	// Reason is a machine-readable failure kind.
	Reason string `json:"reason,omitempty"`
}
