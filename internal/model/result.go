package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionResult is the per-question line of a result breakdown. Every
// snapshot question appears exactly once, answered or not.
type QuestionResult struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	UserAnswer    any          `json:"user_answer"`
	CorrectAnswer any          `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
	Answered      bool         `json:"answered"`
}

// ExamResult is the immutable outcome of a submitted session. It is created
// exactly once, at submission, and never updated afterward.
type ExamResult struct {
	ID                uuid.UUID        `json:"id"`
	SessionID         uuid.UUID        `json:"session_id"`
	CandidateID       uuid.UUID        `json:"candidate_id"`
	ConfigID          uuid.UUID        `json:"config_id"`
	TotalQuestions    int              `json:"total_questions"`
	AnsweredQuestions int              `json:"answered_questions"`
	CorrectAnswers    int              `json:"correct_answers"`
	ScorePercentage   float64          `json:"score_percentage"`
	PassMark          int              `json:"pass_mark"`
	Passed            bool             `json:"passed"`
	TimeTakenMinutes  float64          `json:"time_taken_minutes"`
	TimeEvents        []TimeEvent      `json:"time_events"`
	QuestionResults   []QuestionResult `json:"question_results"`
	SubmittedAt       time.Time        `json:"submitted_at"`
}
