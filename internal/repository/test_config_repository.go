package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// TestConfigRepository provides read-only access to test configurations.
type TestConfigRepository struct {
	pool *pgxpool.Pool
}

// NewTestConfigRepository creates a new TestConfigRepository.
func NewTestConfigRepository(pool *pgxpool.Pool) *TestConfigRepository {
	return &TestConfigRepository{pool: pool}
}

// GetActiveByID retrieves an active single-stage configuration.
func (r *TestConfigRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*model.TestConfiguration, error) {
	c := &model.TestConfiguration{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, category_id, total_questions, pass_mark_percentage,
		        time_limit_minutes, difficulty_distribution, is_active, created_at
		 FROM test_configurations
		 WHERE id = $1 AND is_active`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CategoryID, &c.TotalQuestions, &c.PassMarkPercentage,
		&c.TimeLimitMinutes, &c.DifficultyDistribution, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a single-stage configuration regardless of active state.
// Submission needs the pass mark even when the configuration was deactivated
// mid-session.
func (r *TestConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestConfiguration, error) {
	c := &model.TestConfiguration{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, category_id, total_questions, pass_mark_percentage,
		        time_limit_minutes, difficulty_distribution, is_active, created_at
		 FROM test_configurations
		 WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CategoryID, &c.TotalQuestions, &c.PassMarkPercentage,
		&c.TimeLimitMinutes, &c.DifficultyDistribution, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetActiveMultiStageByID retrieves an active multi-stage configuration.
func (r *TestConfigRepository) GetActiveMultiStageByID(ctx context.Context, id uuid.UUID) (*model.MultiStageConfiguration, error) {
	c := &model.MultiStageConfiguration{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, category_id,
		        written_total_questions, written_pass_mark_percentage, written_time_limit_minutes,
		        written_difficulty_distribution, yard_pass_mark_percentage, road_pass_mark_percentage,
		        requires_officer_assignment, is_active, created_at
		 FROM multi_stage_configurations
		 WHERE id = $1 AND is_active`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CategoryID,
		&c.WrittenTotalQuestions, &c.WrittenPassMarkPercentage, &c.WrittenTimeLimitMinutes,
		&c.WrittenDifficultyDistribution, &c.YardPassMarkPercentage, &c.RoadPassMarkPercentage,
		&c.RequiresOfficerAssignment, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetMultiStageByID retrieves a multi-stage configuration regardless of
// active state, for evaluating sessions that outlive a deactivation.
func (r *TestConfigRepository) GetMultiStageByID(ctx context.Context, id uuid.UUID) (*model.MultiStageConfiguration, error) {
	c := &model.MultiStageConfiguration{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, category_id,
		        written_total_questions, written_pass_mark_percentage, written_time_limit_minutes,
		        written_difficulty_distribution, yard_pass_mark_percentage, road_pass_mark_percentage,
		        requires_officer_assignment, is_active, created_at
		 FROM multi_stage_configurations
		 WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CategoryID,
		&c.WrittenTotalQuestions, &c.WrittenPassMarkPercentage, &c.WrittenTimeLimitMinutes,
		&c.WrittenDifficultyDistribution, &c.YardPassMarkPercentage, &c.RoadPassMarkPercentage,
		&c.RequiresOfficerAssignment, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
