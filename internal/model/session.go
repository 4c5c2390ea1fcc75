package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states. Transitions are
// one-directional: active → completed (submit), active → expired (lazy, on
// read), active → cancelled (administrative).
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusExpired   SessionStatus = "expired"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// TimeEventKind distinguishes the two record shapes sharing the session's
// ordered time-event log.
type TimeEventKind string

const (
	TimeEventExtend TimeEventKind = "extend"
	TimeEventReset  TimeEventKind = "reset"
)

// TimeEvent is one entry of a session's time-extension/reset log.
type TimeEvent struct {
	Kind              TimeEventKind `json:"kind"`
	AdditionalMinutes int           `json:"additional_minutes,omitempty"` // extend only
	ResetToMinutes    int           `json:"reset_to_minutes,omitempty"`   // reset only
	Reason            string        `json:"reason,omitempty"`
	ActorID           string        `json:"actor_id"`
	OccurredAt        time.Time     `json:"occurred_at"`
}

// SubmittedAnswer is a candidate's answer to one question. Exactly one of
// SelectedOption (letter label, multiple choice) or BooleanAnswer
// (true/false) is set.
type SubmittedAnswer struct {
	QuestionID     uuid.UUID  `json:"question_id"`
	SelectedOption *string    `json:"selected_option,omitempty"`
	BooleanAnswer  *bool      `json:"boolean_answer,omitempty"`
	AnsweredAt     *time.Time `json:"answered_at,omitempty"`
}

// Answered reports whether the answer carries an actual choice.
func (a SubmittedAnswer) Answered() bool {
	return a.SelectedOption != nil || a.BooleanAnswer != nil
}

// ExamSession is a candidate's timed attempt at a written test.
//
// Questions holds a frozen copy of the selected questions taken once at
// start; later edits to the live question bank never affect an in-progress
// session. EndTime only moves forward via extensions, or jumps to
// now+original limit on a reset.
type ExamSession struct {
	ID               uuid.UUID                     `json:"id"`
	ConfigID         uuid.UUID                     `json:"config_id"`
	CandidateID      uuid.UUID                     `json:"candidate_id"`
	Questions        []Question                    `json:"-"` // snapshot; never serialized to candidates
	StartTime        time.Time                     `json:"start_time"`
	EndTime          time.Time                     `json:"end_time"`
	TimeLimitMinutes int                           `json:"time_limit_minutes"`
	TimeEvents       []TimeEvent                   `json:"time_events"`
	Status           SessionStatus                 `json:"status"`
	Answers          map[uuid.UUID]SubmittedAnswer `json:"answers"`
	Bookmarks        []uuid.UUID                   `json:"bookmarked_questions"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}

// DeadlinePassed reports whether the session deadline has elapsed at now.
// now > end_time is the single source of truth for every deadline check.
func (s *ExamSession) DeadlinePassed(now time.Time) bool {
	return now.After(s.EndTime)
}

// IsBookmarked reports whether a question is in the bookmark set.
func (s *ExamSession) IsBookmarked(questionID uuid.UUID) bool {
	for _, id := range s.Bookmarks {
		if id == questionID {
			return true
		}
	}
	return false
}

// StartSessionRequest is the payload for starting a single-stage session.
type StartSessionRequest struct {
	TestConfigID uuid.UUID `json:"test_config_id" binding:"required"`
	// CandidateID is honored for staff callers only; candidates always start
	// sessions for themselves.
	CandidateID *uuid.UUID `json:"candidate_id" binding:"omitempty"`
}

// SaveAnswerRequest is the payload for saving one answer and/or toggling a
// bookmark. Both side effects are idempotent.
type SaveAnswerRequest struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption *string   `json:"selected_option" binding:"omitempty,len=1"`
	BooleanAnswer  *bool     `json:"boolean_answer" binding:"omitempty"`
	IsBookmarked   bool      `json:"is_bookmarked"`
}

// SubmitRequest is the payload for final submission.
type SubmitRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"dive"`
}

// ExtendTimeRequest is the payload for extending a session deadline.
type ExtendTimeRequest struct {
	AdditionalMinutes int    `json:"additional_minutes" binding:"required,min=1,max=120"`
	Reason            string `json:"reason" binding:"omitempty,max=500"`
}
