package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// MultiStageRepository handles multi-stage session persistence.
//
// Stage advancement is a single conditional UPDATE keyed by id, current
// stage, and an open status, so two officers scoring the same stage
// concurrently cannot both advance it.
type MultiStageRepository struct {
	pool *pgxpool.Pool
}

// NewMultiStageRepository creates a new MultiStageRepository.
func NewMultiStageRepository(pool *pgxpool.Pool) *MultiStageRepository {
	return &MultiStageRepository{pool: pool}
}

const multiStageColumns = `id, config_id, candidate_id, appointment_id, current_stage, status,
	failed_stage, stage_slots, written_session_id, officer_assignments,
	created_at, updated_at, completed_at, failed_at`

var openStatuses = []model.MultiStageStatus{
	model.MultiStageStatusActive,
	model.MultiStageStatusWrittenPassed,
	model.MultiStageStatusYardPassed,
}

func scanMultiStage(row pgx.Row) (*model.MultiStageSession, error) {
	s := &model.MultiStageSession{}
	err := row.Scan(
		&s.ID, &s.ConfigID, &s.CandidateID, &s.AppointmentID, &s.CurrentStage, &s.Status,
		&s.FailedStage, &s.StageSlots, &s.WrittenSessionID, &s.Assignments,
		&s.CreatedAt, &s.UpdatedAt, &s.CompletedAt, &s.FailedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new multi-stage session. A partial unique index on
// (candidate_id, config_id) over open statuses enforces one open session per
// pair; on a concurrent start pgx.ErrNoRows is returned.
func (r *MultiStageRepository) Create(ctx context.Context, s *model.MultiStageSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO multi_stage_sessions
		   (id, config_id, candidate_id, appointment_id, current_stage, status, stage_slots, officer_assignments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (candidate_id, config_id)
		   WHERE status IN ('active', 'written_passed', 'yard_passed') DO NOTHING
		 RETURNING id, created_at`,
		s.ID, s.ConfigID, s.CandidateID, s.AppointmentID, s.CurrentStage, s.Status,
		s.StageSlots, s.Assignments,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a multi-stage session.
func (r *MultiStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MultiStageSession, error) {
	return scanMultiStage(r.pool.QueryRow(ctx,
		`SELECT `+multiStageColumns+` FROM multi_stage_sessions WHERE id = $1`, id))
}

// GetOpenByCandidateAndConfig retrieves the candidate's open session for a
// configuration, if one exists.
func (r *MultiStageRepository) GetOpenByCandidateAndConfig(ctx context.Context, candidateID, configID uuid.UUID) (*model.MultiStageSession, error) {
	return scanMultiStage(r.pool.QueryRow(ctx,
		`SELECT `+multiStageColumns+`
		 FROM multi_stage_sessions
		 WHERE candidate_id = $1 AND config_id = $2 AND status = ANY($3)`,
		candidateID, configID, openStatuses))
}

// ApplyStageOutcome writes a stage outcome and its transition in one
// conditional update. The update only applies while the session is still at
// expectStage with an open status; false means another request got there
// first (or the session is closed) and the outcome was not applied.
func (r *MultiStageRepository) ApplyStageOutcome(ctx context.Context, s *model.MultiStageSession, expectStage model.Stage) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE multi_stage_sessions
		 SET current_stage = $2, status = $3, failed_stage = $4, stage_slots = $5,
		     completed_at = $6, failed_at = $7, updated_at = NOW()
		 WHERE id = $1 AND current_stage = $8 AND status = ANY($9)`,
		s.ID, s.CurrentStage, s.Status, s.FailedStage, s.StageSlots,
		s.CompletedAt, s.FailedAt, expectStage, openStatuses)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetWrittenSession links the single-stage session driving the written stage.
func (r *MultiStageRepository) SetWrittenSession(ctx context.Context, id, writtenSessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE multi_stage_sessions
		 SET written_session_id = $2, updated_at = NOW()
		 WHERE id = $1`,
		id, writtenSessionID)
	return err
}

// AssignOfficer stores the officer assignment for a practical stage on an
// open session. Returns false when the session is closed.
func (r *MultiStageRepository) AssignOfficer(ctx context.Context, id uuid.UUID, s *model.MultiStageSession) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE multi_stage_sessions
		 SET officer_assignments = $2, updated_at = NOW()
		 WHERE id = $1 AND status = ANY($3)`,
		id, s.Assignments, openStatuses)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListOpenByOfficer retrieves open sessions where the officer is assigned to
// the yard or road stage.
func (r *MultiStageRepository) ListOpenByOfficer(ctx context.Context, officerID uuid.UUID) ([]model.MultiStageSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+multiStageColumns+`
		 FROM multi_stage_sessions
		 WHERE status = ANY($2)
		   AND (officer_assignments -> 0 ->> 'officer_id' = $1::text
		     OR officer_assignments -> 1 ->> 'officer_id' = $1::text)
		 ORDER BY created_at DESC`,
		officerID.String(), openStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.MultiStageSession
	for rows.Next() {
		s := &model.MultiStageSession{}
		if err := rows.Scan(
			&s.ID, &s.ConfigID, &s.CandidateID, &s.AppointmentID, &s.CurrentStage, &s.Status,
			&s.FailedStage, &s.StageSlots, &s.WrittenSessionID, &s.Assignments,
			&s.CreatedAt, &s.UpdatedAt, &s.CompletedAt, &s.FailedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
