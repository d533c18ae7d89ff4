package domain

import (
	"fmt"
	"strings"
)

// Difficulty is the self-reported difficulty of a generated question.
type Difficulty string

// Supported difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Defaults applied to question records when the model omits a field.
const (
	DefaultDifficulty  = DifficultyMedium
	DefaultTopic       = "general"
	DefaultAnswer      = "Answer based on the provided materials"
	DefaultExplanation = "Explanation based on the provided materials"
)

// Bounds on the number of questions a single request may ask for.
const (
	MinQuestions     = 1
	MaxQuestions     = 10
	DefaultQuestions = 5
)

// ParseDifficulty maps free text onto a Difficulty. Anything unrecognised
// becomes DefaultDifficulty.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DefaultDifficulty
	}
}

// QuestionRecord is one generated exam question with its answer.
type QuestionRecord struct {
	Question    string     `json:"question"`
	Answer      string     `json:"answer"`
	Difficulty  Difficulty `json:"difficulty"`
	Topic       string     `json:"topic"`
	Explanation string     `json:"explanation,omitempty"`
}

// Normalize trims every field and fills the documented defaults for
// difficulty and topic. When requireExplanation is set an empty explanation
// is replaced with DefaultExplanation.
func (q QuestionRecord) Normalize(requireExplanation bool) QuestionRecord {
	q.Question = strings.TrimSpace(q.Question)
	q.Answer = strings.TrimSpace(q.Answer)
	q.Topic = strings.TrimSpace(q.Topic)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.Difficulty = ParseDifficulty(string(q.Difficulty))

	if q.Topic == "" {
		q.Topic = DefaultTopic
	}
	if requireExplanation && q.Explanation == "" {
		q.Explanation = DefaultExplanation
	}
	return q
}

// Valid reports whether the record carries both a question and an answer.
func (q QuestionRecord) Valid() bool {
	return strings.TrimSpace(q.Question) != "" && strings.TrimSpace(q.Answer) != ""
}

// GenerationResult is the output of one generation run.
type GenerationResult struct {
	Questions []QuestionRecord `json:"questions"`

	// GenerationTime is the time spent waiting on the model, in seconds.
	GenerationTime float64 `json:"generation_time"`
}

// Clone returns a deep copy so snapshots handed to readers cannot alias
// the stored record.
func (r *GenerationResult) Clone() *GenerationResult {
	if r == nil {
		return nil
	}
	out := &GenerationResult{
		Questions:      make([]QuestionRecord, len(r.Questions)),
		GenerationTime: r.GenerationTime,
	}
	copy(out.Questions, r.Questions)
	return out
}

// ValidateGenerationRequest checks the inputs shared by every generation entry
// point: non-blank materials and a question count within bounds.
func ValidateGenerationRequest(materials string, count int) error {
	if strings.TrimSpace(materials) == "" {
		return NewValidationError("materials", "cannot be empty", ErrValidation)
	}
	if count < MinQuestions || count > MaxQuestions {
		return NewValidationError("num_questions",
			fmt.Sprintf("must be between %d and %d", MinQuestions, MaxQuestions), ErrValidation)
	}
	return nil
}
