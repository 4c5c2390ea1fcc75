package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// CriterionRepository provides read-only access to evaluation criteria.
// Criterion authoring lives in a separate staff service.
type CriterionRepository struct {
	pool *pgxpool.Pool
}

// NewCriterionRepository creates a new CriterionRepository.
func NewCriterionRepository(pool *pgxpool.Pool) *CriterionRepository {
	return &CriterionRepository{pool: pool}
}

// ListActiveByStage retrieves the active criteria for a practical stage.
func (r *CriterionRepository) ListActiveByStage(ctx context.Context, stage model.Stage) ([]model.EvaluationCriterion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, stage, max_score, is_critical, is_active, created_at
		 FROM evaluation_criteria
		 WHERE stage = $1 AND is_active
		 ORDER BY name`, stage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []model.EvaluationCriterion
	for rows.Next() {
		var c model.EvaluationCriterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Stage, &c.MaxScore,
			&c.IsCritical, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}
