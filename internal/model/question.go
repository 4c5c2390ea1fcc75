package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeVideoEmbedded  QuestionType = "video_embedded"
)

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionStatus enumerates the question-bank approval states.
// Only approved questions are eligible for selection into a session.
type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusApproved QuestionStatus = "approved"
	QuestionStatusRejected QuestionStatus = "rejected"
)

// QuestionOption is a single multiple-choice option. The correct option is
// identified by position in the option list, not by a stored label.
type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a question-bank entry. The question bank is authored and
// approved outside this service; the session core only reads it.
type Question struct {
	ID            uuid.UUID        `json:"id"`
	CategoryID    uuid.UUID        `json:"category_id"`
	QuestionType  QuestionType     `json:"question_type"`
	QuestionText  string           `json:"question_text"`
	Options       []QuestionOption `json:"options,omitempty"`
	CorrectAnswer *bool            `json:"correct_answer,omitempty"` // true/false questions only
	VideoURL      string           `json:"video_url,omitempty"`
	Explanation   string           `json:"explanation,omitempty"`
	Difficulty    Difficulty       `json:"difficulty"`
	Status        QuestionStatus   `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RedactedOption is an option with the is_correct flag stripped.
type RedactedOption struct {
	Text string `json:"text"`
}

// SessionQuestion is the answer-free view of a snapshot question served to a
// candidate during an active session, together with their saved answer state.
type SessionQuestion struct {
	ID             uuid.UUID        `json:"id"`
	QuestionType   QuestionType     `json:"question_type"`
	QuestionText   string           `json:"question_text"`
	Options        []RedactedOption `json:"options,omitempty"`
	VideoURL       string           `json:"video_url,omitempty"`
	Difficulty     Difficulty       `json:"difficulty"`
	CurrentAnswer  *SubmittedAnswer `json:"current_answer,omitempty"`
	IsBookmarked   bool             `json:"is_bookmarked"`
	QuestionNumber int              `json:"question_number"` // 1-based
	TotalQuestions int              `json:"total_questions"`
}

// Redact strips every answer-revealing field from a snapshot question.
func (q *Question) Redact() SessionQuestion {
	out := SessionQuestion{
		ID:           q.ID,
		QuestionType: q.QuestionType,
		QuestionText: q.QuestionText,
		VideoURL:     q.VideoURL,
		Difficulty:   q.Difficulty,
	}
	if len(q.Options) > 0 {
		out.Options = make([]RedactedOption, len(q.Options))
		for i, opt := range q.Options {
			out.Options[i] = RedactedOption{Text: opt.Text}
		}
	}
	return out
}

// CorrectOptionLabel returns the letter label (A, B, C, ...) of the first
// option flagged correct, in snapshot list order. Returns "" when the
// question has no correct option.
func (q *Question) CorrectOptionLabel() string {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return string(rune('A' + i))
		}
	}
	return ""
}
