package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// StageResultRepository handles immutable practical-stage evaluation records.
type StageResultRepository struct {
	pool *pgxpool.Pool
}

// NewStageResultRepository creates a new StageResultRepository.
func NewStageResultRepository(pool *pgxpool.Pool) *StageResultRepository {
	return &StageResultRepository{pool: pool}
}

// Create inserts a stage result. One record is written per evaluation
// attempt regardless of outcome; records are never updated.
func (r *StageResultRepository) Create(ctx context.Context, res *model.StageResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stage_results
		   (id, session_id, candidate_id, config_id, stage, evaluations, total_score,
		    max_possible_score, score_percentage, pass_mark, passed, critical_passed,
		    evaluated_by, evaluation_notes, evaluated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		res.ID, res.SessionID, res.CandidateID, res.ConfigID, res.Stage, res.Evaluations,
		res.TotalScore, res.MaxPossibleScore, res.ScorePercentage, res.PassMark, res.Passed,
		res.CriticalPassed, res.EvaluatedBy, res.EvaluationNotes, res.EvaluatedAt)
	return err
}

// ListBySession retrieves all evaluation attempts for a session in
// evaluation order.
func (r *StageResultRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.StageResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, candidate_id, config_id, stage, evaluations, total_score,
		        max_possible_score, score_percentage, pass_mark, passed, critical_passed,
		        evaluated_by, evaluation_notes, evaluated_at
		 FROM stage_results
		 WHERE session_id = $1
		 ORDER BY evaluated_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.StageResult
	for rows.Next() {
		var res model.StageResult
		if err := rows.Scan(
			&res.ID, &res.SessionID, &res.CandidateID, &res.ConfigID, &res.Stage, &res.Evaluations,
			&res.TotalScore, &res.MaxPossibleScore, &res.ScorePercentage, &res.PassMark, &res.Passed,
			&res.CriticalPassed, &res.EvaluatedBy, &res.EvaluationNotes, &res.EvaluatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
