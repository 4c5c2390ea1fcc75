package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// ResultRepository handles immutable test result records. Results are
// inserted exactly once at submission and never updated.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, session_id, candidate_id, config_id, total_questions, answered_questions,
	correct_answers, score_percentage, pass_mark, passed, time_taken_minutes, time_events,
	question_results, submitted_at`

// Create inserts a result record. The unique constraint on session_id makes
// a second insert for the same session fail rather than overwrite.
func (r *ResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_results
		   (id, session_id, candidate_id, config_id, total_questions, answered_questions,
		    correct_answers, score_percentage, pass_mark, passed, time_taken_minutes,
		    time_events, question_results, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		res.ID, res.SessionID, res.CandidateID, res.ConfigID, res.TotalQuestions,
		res.AnsweredQuestions, res.CorrectAnswers, res.ScorePercentage, res.PassMark,
		res.Passed, res.TimeTakenMinutes, res.TimeEvents, res.QuestionResults, res.SubmittedAt)
	return err
}

func scanResult(row pgx.Row) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	err := row.Scan(
		&res.ID, &res.SessionID, &res.CandidateID, &res.ConfigID, &res.TotalQuestions,
		&res.AnsweredQuestions, &res.CorrectAnswers, &res.ScorePercentage, &res.PassMark,
		&res.Passed, &res.TimeTakenMinutes, &res.TimeEvents, &res.QuestionResults, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetByID retrieves a result by its id.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM test_results WHERE id = $1`, id))
}

// GetBySessionID retrieves the result of a submitted session.
func (r *ResultRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM test_results WHERE session_id = $1`, sessionID))
}

// List retrieves results, optionally filtered by candidate and/or
// configuration, newest first.
func (r *ResultRepository) List(ctx context.Context, candidateID, configID *uuid.UUID, limit int) ([]model.ExamResult, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM test_results
		 WHERE ($1::uuid IS NULL OR candidate_id = $1)
		   AND ($2::uuid IS NULL OR config_id = $2)
		 ORDER BY submitted_at DESC
		 LIMIT $3`,
		candidateID, configID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res := &model.ExamResult{}
		if err := rows.Scan(
			&res.ID, &res.SessionID, &res.CandidateID, &res.ConfigID, &res.TotalQuestions,
			&res.AnsweredQuestions, &res.CorrectAnswers, &res.ScorePercentage, &res.PassMark,
			&res.Passed, &res.TimeTakenMinutes, &res.TimeEvents, &res.QuestionResults, &res.SubmittedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}
