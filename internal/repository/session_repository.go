package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/model"
)

// SessionRepository handles single-stage test session persistence.
//
// Every mutation is a single conditional UPDATE keyed by session id and
// current status, so the database's per-row atomicity prevents two
// concurrent requests from double-submitting or mutating a finished session.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, config_id, candidate_id, questions, start_time, end_time,
	time_limit_minutes, time_events, status, answers, bookmarked_questions, created_at, updated_at`

func (r *SessionRepository) scanSession(row interface{ Scan(...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(
		&s.ID, &s.ConfigID, &s.CandidateID, &s.Questions, &s.StartTime, &s.EndTime,
		&s.TimeLimitMinutes, &s.TimeEvents, &s.Status, &s.Answers, &s.Bookmarks,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new session. A partial unique index on
// (candidate_id, config_id) WHERE status = 'active' enforces the one-active-
// session invariant; on a concurrent start the insert is a no-op and
// pgx.ErrNoRows is returned from the RETURNING scan.
func (r *SessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO test_sessions
		   (id, config_id, candidate_id, questions, start_time, end_time, time_limit_minutes,
		    time_events, status, answers, bookmarked_questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, '[]', $8, '{}', '[]')
		 ON CONFLICT (candidate_id, config_id) WHERE status = 'active' DO NOTHING
		 RETURNING id, created_at`,
		s.ID, s.ConfigID, s.CandidateID, s.Questions, s.StartTime, s.EndTime,
		s.TimeLimitMinutes, model.SessionStatusActive,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a session including its frozen question snapshot.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return r.scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// GetActiveByCandidateAndConfig retrieves the candidate's active session for
// a configuration, if one exists.
func (r *SessionRepository) GetActiveByCandidateAndConfig(ctx context.Context, candidateID, configID uuid.UUID) (*model.ExamSession, error) {
	return r.scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM test_sessions
		 WHERE candidate_id = $1 AND config_id = $2 AND status = $3`,
		candidateID, configID, model.SessionStatusActive))
}

// SaveAnswer upserts one answer into the session's answer map and toggles
// bookmark membership, in one conditional update. A nil answer leaves the
// answer map untouched (bookmark-only toggle). Returns false when the
// session is no longer active.
func (r *SessionRepository) SaveAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answer *model.SubmittedAnswer, bookmark bool) (bool, error) {
	var answerJSON []byte
	if answer != nil {
		var err error
		answerJSON, err = json.Marshal(answer)
		if err != nil {
			return false, err
		}
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET answers = CASE WHEN $2::jsonb IS NULL THEN answers
		                    ELSE jsonb_set(answers, ARRAY[$3::text], $2::jsonb) END,
		     bookmarked_questions = CASE
		       WHEN $4 AND NOT bookmarked_questions ? $3::text THEN bookmarked_questions || to_jsonb($3::text)
		       WHEN NOT $4 THEN bookmarked_questions - $3::text
		       ELSE bookmarked_questions END,
		     updated_at = NOW()
		 WHERE id = $1 AND status = $5`,
		sessionID, answerJSON, questionID.String(), bookmark, model.SessionStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendTimeEvent appends an extension or reset record to the session's
// ordered time-event log and moves the deadline, only while active.
func (r *SessionRepository) AppendTimeEvent(ctx context.Context, sessionID uuid.UUID, event model.TimeEvent, newEndTime time.Time) (bool, error) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return false, err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET time_events = time_events || $2::jsonb,
		     end_time = $3,
		     updated_at = NOW()
		 WHERE id = $1 AND status = $4`,
		sessionID, eventJSON, newEndTime, model.SessionStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Complete transitions an active session to completed. Returns false when
// the session was not active, which guards against double submission.
func (r *SessionRepository) Complete(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		sessionID, model.SessionStatusCompleted, model.SessionStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkExpired lazily transitions an active session whose deadline has passed.
func (r *SessionRepository) MarkExpired(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		sessionID, model.SessionStatusExpired, model.SessionStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
