package model

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationCriterion is a rubric item for a practical stage. Criteria are
// authored outside this service and read-only to the session core.
//
// A critical criterion must be scored at its maximum for the stage to pass,
// regardless of the aggregate percentage.
type EvaluationCriterion struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Stage       Stage     `json:"stage"` // yard or road
	MaxScore    int       `json:"max_score"`
	IsCritical  bool      `json:"is_critical"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// StageEvaluation is one officer-scored criterion line.
type StageEvaluation struct {
	CriterionID uuid.UUID `json:"criterion_id" binding:"required"`
	Score       int       `json:"score" binding:"min=0"`
	Notes       string    `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// StageResult is the immutable record of one practical-stage evaluation
// attempt, written whether the stage passed or failed.
type StageResult struct {
	ID               uuid.UUID         `json:"id"`
	SessionID        uuid.UUID         `json:"session_id"`
	CandidateID      uuid.UUID         `json:"candidate_id"`
	ConfigID         uuid.UUID         `json:"config_id"`
	Stage            Stage             `json:"stage"`
	Evaluations      []StageEvaluation `json:"evaluations"`
	TotalScore       int               `json:"total_score"`
	MaxPossibleScore int               `json:"max_possible_score"`
	ScorePercentage  float64           `json:"score_percentage"`
	PassMark         int               `json:"pass_mark"`
	Passed           bool              `json:"passed"`
	CriticalPassed   bool              `json:"critical_passed"`
	EvaluatedBy      uuid.UUID         `json:"evaluated_by"`
	EvaluationNotes  string            `json:"evaluation_notes,omitempty"`
	EvaluatedAt      time.Time         `json:"evaluated_at"`
}

// EvaluateStageRequest is the payload for scoring a practical stage.
type EvaluateStageRequest struct {
	SessionID       uuid.UUID         `json:"session_id" binding:"required"`
	Stage           string            `json:"stage" binding:"required"`
	Evaluations     []StageEvaluation `json:"evaluations" binding:"required,min=1,dive"`
	EvaluationNotes string            `json:"evaluation_notes" binding:"omitempty,max=2000"`
}
