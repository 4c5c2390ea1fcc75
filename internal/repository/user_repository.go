package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// User is a staff account. Account management is out of core scope; the
// session core reads users to validate officer identity on assignment.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         model.Role `json:"role"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
}

// UserRepository provides read access to staff accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByEmail retrieves an active staff account for login.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, role, password_hash, is_active
		 FROM users
		 WHERE email = $1 AND is_active`, email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetActiveOfficer retrieves an active user holding the assessment officer role.
func (r *UserRepository) GetActiveOfficer(ctx context.Context, id uuid.UUID) (*User, error) {
	u := &User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, role, password_hash, is_active
		 FROM users
		 WHERE id = $1 AND role = $2 AND is_active`,
		id, model.RoleOfficer,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive)
	if err != nil {
		return nil, err
	}
	return u, nil
}
