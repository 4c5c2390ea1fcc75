package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AppointmentRepository answers the enhanced-access question: may this
// candidate sit this test right now? Scheduling and identity verification
// are handled by a separate staff service; the session core only honors the
// resulting gate.
type AppointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository creates a new AppointmentRepository.
func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// VerifiedAppointmentToday looks up a scheduled-or-confirmed, identity-
// verified appointment for the candidate and configuration dated today.
// Returns (nil, false) when no such appointment exists; the caller treats
// that as access denied.
func (r *AppointmentRepository) VerifiedAppointmentToday(ctx context.Context, candidateID, configID uuid.UUID) (*uuid.UUID, bool, error) {
	today := time.Now().UTC().Format("2006-01-02")

	var appointmentID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id
		 FROM appointments
		 WHERE candidate_id = $1 AND test_config_id = $2
		   AND status IN ('scheduled', 'confirmed')
		   AND verification_status = 'verified'
		   AND appointment_date = $3
		 LIMIT 1`,
		candidateID, configID, today,
	).Scan(&appointmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &appointmentID, true, nil
}
