package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage enumerates the stages of a multi-stage driving test, in order.
type Stage string

const (
	StageWritten   Stage = "written"
	StageYard      Stage = "yard"
	StageRoad      Stage = "road"
	StageCompleted Stage = "completed"
)

// orderedStages lists the evaluable stages in sequence.
var orderedStages = [3]Stage{StageWritten, StageYard, StageRoad}

// ParseStage validates a raw stage string.
func ParseStage(raw string) (Stage, error) {
	switch Stage(raw) {
	case StageWritten, StageYard, StageRoad:
		return Stage(raw), nil
	default:
		return "", fmt.Errorf("unknown stage %q", raw)
	}
}

// Index returns the position of an evaluable stage in written→yard→road
// order, or -1 for StageCompleted.
func (s Stage) Index() int {
	for i, st := range orderedStages {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the stage that follows s, or StageCompleted after road.
func (s Stage) Next() Stage {
	switch s {
	case StageWritten:
		return StageYard
	case StageYard:
		return StageRoad
	default:
		return StageCompleted
	}
}

// Practical reports whether the stage is officer-evaluated.
func (s Stage) Practical() bool {
	return s == StageYard || s == StageRoad
}

// MultiStageStatus enumerates the overall states of a multi-stage session.
type MultiStageStatus string

const (
	MultiStageStatusActive        MultiStageStatus = "active"
	MultiStageStatusWrittenPassed MultiStageStatus = "written_passed"
	MultiStageStatusYardPassed    MultiStageStatus = "yard_passed"
	MultiStageStatusCompleted     MultiStageStatus = "completed"
	MultiStageStatusFailed        MultiStageStatus = "failed"
)

// Open reports whether the session can still progress.
func (s MultiStageStatus) Open() bool {
	switch s {
	case MultiStageStatusActive, MultiStageStatusWrittenPassed, MultiStageStatusYardPassed:
		return true
	default:
		return false
	}
}

// StageSlot records the outcome of one stage of a multi-stage session.
// Unevaluated slots have Completed=false and Passed=nil.
type StageSlot struct {
	Completed   bool       `json:"completed"`
	Passed      *bool      `json:"passed"`
	EvaluatedBy string     `json:"evaluated_by,omitempty"` // officer identity; written stage records the session engine
	ResultID    *uuid.UUID `json:"result_id,omitempty"`    // ExamResult (written) or StageResult (practical)
}

// OfficerAssignment records which officer is assigned to score a practical
// stage. Enforcement at evaluation time is governed by the configuration's
// RequiresOfficerAssignment flag.
type OfficerAssignment struct {
	OfficerID  uuid.UUID `json:"officer_id"`
	AssignedBy uuid.UUID `json:"assigned_by"`
	Notes      string    `json:"notes,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// MultiStageSession is a candidate's written → yard → road attempt.
//
// StageSlots is a fixed array indexed by Stage.Index(); there is exactly one
// slot per evaluable stage. CurrentStage always equals the earliest
// not-yet-passed stage, except when Status is failed (frozen at FailedStage)
// or completed.
type MultiStageSession struct {
	ID            uuid.UUID        `json:"id"`
	ConfigID      uuid.UUID        `json:"config_id"`
	CandidateID   uuid.UUID        `json:"candidate_id"`
	AppointmentID *uuid.UUID       `json:"appointment_id,omitempty"`
	CurrentStage  Stage            `json:"current_stage"`
	Status        MultiStageStatus `json:"status"`
	FailedStage   *Stage           `json:"failed_stage,omitempty"`
	StageSlots    [3]StageSlot     `json:"stage_slots"`
	// WrittenSessionID links the single-stage session driving the written stage.
	WrittenSessionID *uuid.UUID `json:"written_session_id,omitempty"`
	// Assignments index 0 is yard, index 1 is road.
	Assignments [2]*OfficerAssignment `json:"officer_assignments"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	FailedAt    *time.Time            `json:"failed_at,omitempty"`
}

// Slot returns a pointer to the slot for an evaluable stage.
func (s *MultiStageSession) Slot(stage Stage) *StageSlot {
	return &s.StageSlots[stage.Index()]
}

// AssignmentFor returns the officer assignment for a practical stage, or nil.
func (s *MultiStageSession) AssignmentFor(stage Stage) *OfficerAssignment {
	switch stage {
	case StageYard:
		return s.Assignments[0]
	case StageRoad:
		return s.Assignments[1]
	default:
		return nil
	}
}

// StartMultiStageRequest is the payload for starting a multi-stage session.
type StartMultiStageRequest struct {
	TestConfigID  uuid.UUID  `json:"test_config_id" binding:"required"`
	CandidateID   *uuid.UUID `json:"candidate_id" binding:"omitempty"`
	AppointmentID *uuid.UUID `json:"appointment_id" binding:"omitempty"`
}

// AssignOfficerRequest is the payload for assigning an officer to a
// practical stage.
type AssignOfficerRequest struct {
	SessionID uuid.UUID `json:"session_id" binding:"required"`
	OfficerID uuid.UUID `json:"officer_id" binding:"required"`
	Stage     string    `json:"stage" binding:"required,oneof=yard road"`
	Notes     string    `json:"notes" binding:"omitempty,max=500"`
}
