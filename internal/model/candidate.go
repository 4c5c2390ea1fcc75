package model

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus enumerates the registration approval states.
type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusApproved CandidateStatus = "approved"
	CandidateStatusRejected CandidateStatus = "rejected"
)

// Candidate is a registered license applicant. Registration and the approval
// workflow live outside this service; the session core reads candidates only
// to verify approval before starting a session.
type Candidate struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	TRN       string          `json:"trn"` // taxpayer registration number
	Status    CandidateStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Approved reports whether the candidate may sit tests.
func (c *Candidate) Approved() bool {
	return c.Status == CandidateStatusApproved
}
