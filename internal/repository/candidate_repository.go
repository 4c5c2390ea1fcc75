package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// CandidateRepository provides read-only access to candidate records.
// Registration and the approval workflow live in a separate staff service.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// GetByID retrieves a candidate.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, trn, status, created_at
		 FROM candidates WHERE id = $1`, id,
	).Scan(&c.ID, &c.Email, &c.FullName, &c.TRN, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByEmail retrieves a candidate and their password hash for login.
func (r *CandidateRepository) GetByEmail(ctx context.Context, email string) (*model.Candidate, string, error) {
	c := &model.Candidate{}
	var hash string
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, trn, status, created_at, password_hash
		 FROM candidates WHERE email = $1`, email,
	).Scan(&c.ID, &c.Email, &c.FullName, &c.TRN, &c.Status, &c.CreatedAt, &hash)
	if err != nil {
		return nil, "", err
	}
	return c, hash, nil
}
