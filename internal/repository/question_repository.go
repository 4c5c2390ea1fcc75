package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// QuestionRepository provides read-only access to the approved question bank.
// Authoring and the approval workflow live in a separate staff service.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, category_id, question_type, question_text, options, correct_answer, video_url, explanation, difficulty, status, created_at`

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.CategoryID, &q.QuestionType, &q.QuestionText, &q.Options,
			&q.CorrectAnswer, &q.VideoURL, &q.Explanation, &q.Difficulty, &q.Status, &q.CreatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListApproved retrieves up to limit approved questions for a category and
// difficulty, in random order so repeated oversampling pulls varied pools.
func (r *QuestionRepository) ListApproved(ctx context.Context, categoryID uuid.UUID, difficulty model.Difficulty, limit int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE category_id = $1 AND difficulty = $2 AND status = $3
		 ORDER BY random()
		 LIMIT $4`,
		categoryID, difficulty, model.QuestionStatusApproved, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListApprovedExcluding retrieves approved questions in a category whose IDs
// are not in the exclusion set. Used for backfill when a difficulty bucket
// runs short.
func (r *QuestionRepository) ListApprovedExcluding(ctx context.Context, categoryID uuid.UUID, exclude []uuid.UUID, limit int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE category_id = $1 AND status = $2 AND NOT (id = ANY($3))
		 ORDER BY random()
		 LIMIT $4`,
		categoryID, model.QuestionStatusApproved, exclude, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}
