package model

import "time"

// AuditEventType enumerates the session lifecycle events recorded for the
// authority's audit trail.
type AuditEventType string

const (
	AuditSessionStarted  AuditEventType = "session_started"
	AuditAnswerSaved     AuditEventType = "answer_saved"
	AuditSessionExpired  AuditEventType = "session_expired"
	AuditTestSubmitted   AuditEventType = "test_submitted"
	AuditTimeExtended    AuditEventType = "time_extended"
	AuditTimeReset       AuditEventType = "time_reset"
	AuditStageEvaluated  AuditEventType = "stage_evaluated"
	AuditOfficerAssigned AuditEventType = "officer_assigned"
)

// AuditEvent is one entry of the audit trail. Events are queued to Redis by
// the services and batch-inserted by the audit worker; losing one is
// acceptable, blocking a request on it is not.
type AuditEvent struct {
	Type       AuditEventType `json:"type"`
	SessionID  string         `json:"session_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Detail     string         `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
