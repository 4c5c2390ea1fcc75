package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/model"
)

// SessionStore is the session persistence the service depends on.
// Implemented by repository.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	GetActiveByCandidateAndConfig(ctx context.Context, candidateID, configID uuid.UUID) (*model.ExamSession, error)
	SaveAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answer *model.SubmittedAnswer, bookmark bool) (bool, error)
	AppendTimeEvent(ctx context.Context, sessionID uuid.UUID, event model.TimeEvent, newEndTime time.Time) (bool, error)
	Complete(ctx context.Context, sessionID uuid.UUID) (bool, error)
	MarkExpired(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// ResultStore is implemented by repository.ResultRepository.
type ResultStore interface {
	Create(ctx context.Context, res *model.ExamResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error)
	List(ctx context.Context, candidateID, configID *uuid.UUID, limit int) ([]model.ExamResult, error)
}

// CandidateStore is implemented by repository.CandidateRepository.
type CandidateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
}

// AppointmentStore is implemented by repository.AppointmentRepository.
type AppointmentStore interface {
	VerifiedAppointmentToday(ctx context.Context, candidateID, configID uuid.UUID) (*uuid.UUID, bool, error)
}

// ConfigStore is implemented by repository.TestConfigRepository.
type ConfigStore interface {
	GetActiveByID(ctx context.Context, id uuid.UUID) (*model.TestConfiguration, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestConfiguration, error)
	GetActiveMultiStageByID(ctx context.Context, id uuid.UUID) (*model.MultiStageConfiguration, error)
	GetMultiStageByID(ctx context.Context, id uuid.UUID) (*model.MultiStageConfiguration, error)
}

// SessionService runs the single-stage written test lifecycle: start, serve
// questions, save answers, keep the deadline, score and finalize.
type SessionService struct {
	sessions     SessionStore
	results      ResultStore
	candidates   CandidateStore
	appointments AppointmentStore
	configs      ConfigStore
	selector     *QuestionSelector
	auditor      *Auditor
	rdb          *redis.Client
	submitGrace  time.Duration
	log          zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions SessionStore,
	results ResultStore,
	candidates CandidateStore,
	appointments AppointmentStore,
	configs ConfigStore,
	selector *QuestionSelector,
	auditor *Auditor,
	rdb *redis.Client,
	submitGrace time.Duration,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions:     sessions,
		results:      results,
		candidates:   candidates,
		appointments: appointments,
		configs:      configs,
		selector:     selector,
		auditor:      auditor,
		rdb:          rdb,
		submitGrace:  submitGrace,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// Start begins a session for a candidate, or returns their existing active
// session for the same configuration unchanged. The caller must resolve the
// candidate id before calling (staff may start on a candidate's behalf).
//
// The question snapshot is frozen here; nothing that happens to the question
// bank afterwards can change what this session serves or how it is scored.
func (s *SessionService) Start(ctx context.Context, candidateID uuid.UUID, configID uuid.UUID) (*model.ExamSession, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	if !candidate.Approved() {
		return nil, ErrCandidateNotApproved
	}

	cfg, err := s.configs.GetActiveByID(ctx, configID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("get config: %w", err)
	}

	if _, ok, err := s.appointments.VerifiedAppointmentToday(ctx, candidateID, configID); err != nil {
		return nil, fmt.Errorf("check test access: %w", err)
	} else if !ok {
		return nil, ErrTestAccessDenied
	}

	return s.createSession(ctx, candidateID, cfg)
}

// createSession builds and persists a fresh session for a selected
// configuration, or returns the candidate's existing active one. The written
// stage of multi-stage tests enters here with a projected configuration.
func (s *SessionService) createSession(ctx context.Context, candidateID uuid.UUID, cfg *model.TestConfiguration) (*model.ExamSession, error) {
	// Starting twice is a no-op: the existing active session comes back as-is.
	existing, err := s.sessions.GetActiveByCandidateAndConfig(ctx, candidateID, cfg.ID)
	switch {
	case err == nil:
		if !existing.DeadlinePassed(time.Now()) {
			return existing, nil
		}
		// Deadline already passed; retire it and start fresh below.
		if _, err := s.sessions.MarkExpired(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("expire stale session: %w", err)
		}
		s.auditor.Record(ctx, model.AuditSessionExpired, existing.ID.String(), "", "expired on restart")
	case errors.Is(err, pgx.ErrNoRows):
		// No active session; proceed.
	default:
		return nil, fmt.Errorf("check active session: %w", err)
	}

	questions, err := s.selector.Select(ctx, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &model.ExamSession{
		ID:               uuid.New(),
		ConfigID:         cfg.ID,
		CandidateID:      candidateID,
		Questions:        questions,
		StartTime:        now,
		EndTime:          now.Add(time.Duration(cfg.TimeLimitMinutes) * time.Minute),
		TimeLimitMinutes: cfg.TimeLimitMinutes,
		Status:           model.SessionStatusActive,
		Answers:          map[uuid.UUID]model.SubmittedAnswer{},
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a concurrent start race; the winner's session is the session.
			winner, werr := s.sessions.GetActiveByCandidateAndConfig(ctx, candidateID, cfg.ID)
			if werr != nil {
				return nil, fmt.Errorf("resolve concurrent start: %w", werr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.cacheDeadline(ctx, session)
	s.auditor.Record(ctx, model.AuditSessionStarted, session.ID.String(), candidateID.String(), cfg.Name)
	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("candidate_id", candidateID.String()).
		Int("questions", len(questions)).
		Msg("session started")

	return session, nil
}

// GetSession retrieves a session and applies lazy expiry: a deadline-passed
// active session transitions to expired on this read, and the read succeeds.
// viewerID restricts candidates to their own sessions; staff pass
// viewerID == uuid.Nil to skip the ownership check.
func (s *SessionService) GetSession(ctx context.Context, viewerID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if viewerID != uuid.Nil && session.CandidateID != viewerID {
		return nil, ErrNotSessionOwner
	}

	if session.Status == model.SessionStatusActive && session.DeadlinePassed(time.Now()) {
		if _, err := s.sessions.MarkExpired(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("mark expired: %w", err)
		}
		session.Status = model.SessionStatusExpired
		s.auditor.Record(ctx, model.AuditSessionExpired, session.ID.String(), "", "deadline passed")
	}

	return session, nil
}

// GetQuestion serves one snapshot question by 0-based index, redacted, with
// the candidate's saved answer state attached. The 1-based position travels
// only as display metadata on the response.
func (s *SessionService) GetQuestion(ctx context.Context, viewerID, sessionID uuid.UUID, index int) (*model.SessionQuestion, error) {
	session, err := s.GetSession(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := activeOnly(session); err != nil {
		return nil, err
	}

	if index < 0 || index >= len(session.Questions) {
		return nil, ErrQuestionNotFound
	}
	q := &session.Questions[index]

	out := q.Redact()
	out.QuestionNumber = index + 1
	out.TotalQuestions = len(session.Questions)
	out.IsBookmarked = session.IsBookmarked(q.ID)
	if answer, ok := session.Answers[q.ID]; ok {
		out.CurrentAnswer = &answer
	}
	return &out, nil
}

// SaveAnswer upserts one answer and/or toggles a bookmark while the session
// is active. Saving the same answer twice is idempotent.
func (s *SessionService) SaveAnswer(ctx context.Context, viewerID, sessionID uuid.UUID, req model.SaveAnswerRequest) error {
	session, err := s.GetSession(ctx, viewerID, sessionID)
	if err != nil {
		return err
	}
	if err := activeOnly(session); err != nil {
		return err
	}

	inSnapshot := false
	for i := range session.Questions {
		if session.Questions[i].ID == req.QuestionID {
			inSnapshot = true
			break
		}
	}
	if !inSnapshot {
		return ErrQuestionNotFound
	}

	var answer *model.SubmittedAnswer
	if req.SelectedOption != nil || req.BooleanAnswer != nil {
		now := time.Now()
		answer = &model.SubmittedAnswer{
			QuestionID:    req.QuestionID,
			BooleanAnswer: req.BooleanAnswer,
			AnsweredAt:    &now,
		}
		if req.SelectedOption != nil {
			label := strings.ToUpper(strings.TrimSpace(*req.SelectedOption))
			answer.SelectedOption = &label
		}
	}

	applied, err := s.sessions.SaveAnswer(ctx, sessionID, req.QuestionID, answer, req.IsBookmarked)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	if !applied {
		return ErrSessionNotActive
	}

	s.auditor.Record(ctx, model.AuditAnswerSaved, sessionID.String(), session.CandidateID.String(), req.QuestionID.String())
	return nil
}

// Submit finalizes a session: merges any answers in the submit payload over
// the saved ones, scores the snapshot, persists the immutable result and
// completes the session. Only the first concurrent submit wins; the session
// status guard makes the loser fail rather than double-score.
//
// A submit landing within submitGrace of the deadline still counts; past the
// grace window the session expires instead.
func (s *SessionService) Submit(ctx context.Context, viewerID, sessionID uuid.UUID, req model.SubmitRequest) (*model.ExamResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if viewerID != uuid.Nil && session.CandidateID != viewerID {
		return nil, ErrNotSessionOwner
	}
	if session.Status != model.SessionStatusActive {
		if session.Status == model.SessionStatusExpired {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionNotActive
	}

	cfg, err := s.configs.GetByID(ctx, session.ConfigID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Written-stage sessions of multi-stage tests carry a multi-stage
			// configuration id; they finalize through the multi-stage submit,
			// which knows that configuration's pass mark.
			return nil, ErrStageMismatch
		}
		return nil, fmt.Errorf("get config: %w", err)
	}

	return s.finalize(ctx, session, req.Answers, cfg.PassMarkPercentage)
}

// finalize scores and completes an active session against the given pass
// mark. Both standalone submits and the written stage of multi-stage tests
// end here.
func (s *SessionService) finalize(ctx context.Context, session *model.ExamSession, answers []model.SubmittedAnswer, passMark int) (*model.ExamResult, error) {
	now := time.Now()
	if now.After(session.EndTime.Add(s.submitGrace)) {
		if _, err := s.sessions.MarkExpired(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("mark expired: %w", err)
		}
		s.auditor.Record(ctx, model.AuditSessionExpired, session.ID.String(), "", "submit after grace window")
		return nil, ErrSessionExpired
	}

	if session.Answers == nil {
		session.Answers = map[uuid.UUID]model.SubmittedAnswer{}
	}
	for _, a := range answers {
		if a.Answered() {
			session.Answers[a.QuestionID] = a
		}
	}

	completed, err := s.sessions.Complete(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if !completed {
		return nil, ErrSessionNotActive
	}

	summary := ScoreSnapshot(session.Questions, session.Answers)
	result := &model.ExamResult{
		ID:                uuid.New(),
		SessionID:         session.ID,
		CandidateID:       session.CandidateID,
		ConfigID:          session.ConfigID,
		TotalQuestions:    summary.TotalQuestions,
		AnsweredQuestions: summary.AnsweredQuestions,
		CorrectAnswers:    summary.CorrectAnswers,
		ScorePercentage:   summary.ScorePercentage,
		PassMark:          passMark,
		Passed:            summary.ScorePercentage >= float64(passMark),
		TimeTakenMinutes:  math.Round(now.Sub(session.StartTime).Minutes()*100) / 100,
		TimeEvents:        session.TimeEvents,
		QuestionResults:   summary.QuestionResults,
		SubmittedAt:       now,
	}

	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	s.dropDeadline(ctx, session.ID)
	s.auditor.Record(ctx, model.AuditTestSubmitted, session.ID.String(), session.CandidateID.String(),
		fmt.Sprintf("score=%.2f passed=%t", result.ScorePercentage, result.Passed))
	s.log.Info().
		Str("session_id", session.ID.String()).
		Float64("score", result.ScorePercentage).
		Bool("passed", result.Passed).
		Msg("session submitted")

	return result, nil
}

// ExtendTime pushes the deadline forward by a number of minutes and records
// the extension in the session's time-event log. The deadline only ever moves
// forward here.
func (s *SessionService) ExtendTime(ctx context.Context, actorID, sessionID uuid.UUID, req model.ExtendTimeRequest) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	now := time.Now()
	event := model.TimeEvent{
		Kind:              model.TimeEventExtend,
		AdditionalMinutes: req.AdditionalMinutes,
		Reason:            req.Reason,
		ActorID:           actorID.String(),
		OccurredAt:        now,
	}
	newEnd := session.EndTime.Add(time.Duration(req.AdditionalMinutes) * time.Minute)

	applied, err := s.sessions.AppendTimeEvent(ctx, sessionID, event, newEnd)
	if err != nil {
		return nil, fmt.Errorf("extend time: %w", err)
	}
	if !applied {
		return nil, ErrSessionNotActive
	}

	session.EndTime = newEnd
	session.TimeEvents = append(session.TimeEvents, event)
	s.cacheDeadline(ctx, session)
	s.auditor.Record(ctx, model.AuditTimeExtended, sessionID.String(), actorID.String(),
		fmt.Sprintf("+%dm: %s", req.AdditionalMinutes, req.Reason))

	return session, nil
}

// ResetTime restores the full configured time: the deadline becomes
// now + the original time limit, regardless of how much time was left. The
// reset shares the same ordered time-event log as extensions.
func (s *SessionService) ResetTime(ctx context.Context, actorID, sessionID uuid.UUID, reason string) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	now := time.Now()
	event := model.TimeEvent{
		Kind:           model.TimeEventReset,
		ResetToMinutes: session.TimeLimitMinutes,
		Reason:         reason,
		ActorID:        actorID.String(),
		OccurredAt:     now,
	}
	newEnd := now.Add(time.Duration(session.TimeLimitMinutes) * time.Minute)

	applied, err := s.sessions.AppendTimeEvent(ctx, sessionID, event, newEnd)
	if err != nil {
		return nil, fmt.Errorf("reset time: %w", err)
	}
	if !applied {
		return nil, ErrSessionNotActive
	}

	session.EndTime = newEnd
	session.TimeEvents = append(session.TimeEvents, event)
	s.cacheDeadline(ctx, session)
	s.auditor.Record(ctx, model.AuditTimeReset, sessionID.String(), actorID.String(), reason)

	return session, nil
}

// GetResult retrieves a result by its id.
func (s *SessionService) GetResult(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

// GetSessionResult retrieves the result of a submitted session.
func (s *SessionService) GetSessionResult(ctx context.Context, viewerID, sessionID uuid.UUID) (*model.ExamResult, error) {
	result, err := s.results.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get session result: %w", err)
	}
	if viewerID != uuid.Nil && result.CandidateID != viewerID {
		return nil, ErrNotSessionOwner
	}
	return result, nil
}

// ListResults lists results, optionally filtered by candidate and/or config.
func (s *SessionService) ListResults(ctx context.Context, candidateID, configID *uuid.UUID, limit int) ([]model.ExamResult, error) {
	results, err := s.results.List(ctx, candidateID, configID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// activeOnly translates a non-active session into the matching domain error.
func activeOnly(session *model.ExamSession) error {
	switch session.Status {
	case model.SessionStatusActive:
		return nil
	case model.SessionStatusExpired:
		return ErrSessionExpired
	default:
		return ErrSessionNotActive
	}
}

// cacheDeadline keeps the current deadline in Redis so monitors can read
// remaining time without a database round trip. Best-effort.
func (s *SessionService) cacheDeadline(ctx context.Context, session *model.ExamSession) {
	if s.rdb == nil {
		return
	}
	ttl := time.Until(session.EndTime) + time.Hour
	if ttl <= 0 {
		return
	}
	key := config.CacheKey.SessionDeadlineKey(session.ID.String())
	if err := s.rdb.Set(ctx, key, session.EndTime.Format(time.RFC3339), ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("cache deadline")
	}
}

func (s *SessionService) dropDeadline(ctx context.Context, sessionID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.SessionDeadlineKey(sessionID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("drop deadline cache")
	}
}
