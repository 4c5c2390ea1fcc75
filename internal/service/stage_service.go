package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/repository"
)

// MultiStageStore is implemented by repository.MultiStageRepository.
type MultiStageStore interface {
	Create(ctx context.Context, s *model.MultiStageSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.MultiStageSession, error)
	GetOpenByCandidateAndConfig(ctx context.Context, candidateID, configID uuid.UUID) (*model.MultiStageSession, error)
	ApplyStageOutcome(ctx context.Context, s *model.MultiStageSession, expectStage model.Stage) (bool, error)
	SetWrittenSession(ctx context.Context, id, writtenSessionID uuid.UUID) error
	AssignOfficer(ctx context.Context, id uuid.UUID, s *model.MultiStageSession) (bool, error)
	ListOpenByOfficer(ctx context.Context, officerID uuid.UUID) ([]model.MultiStageSession, error)
}

// StageResultStore is implemented by repository.StageResultRepository.
type StageResultStore interface {
	Create(ctx context.Context, res *model.StageResult) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.StageResult, error)
}

// CriterionStore is implemented by repository.CriterionRepository.
type CriterionStore interface {
	ListActiveByStage(ctx context.Context, stage model.Stage) ([]model.EvaluationCriterion, error)
}

// OfficerStore is implemented by repository.UserRepository.
type OfficerStore interface {
	GetActiveOfficer(ctx context.Context, id uuid.UUID) (*repository.User, error)
}

// StageService runs the multi-stage (written → yard → road) test lifecycle.
// The written stage is driven through the single-stage engine; practical
// stages are scored by officers against evaluation criteria.
type StageService struct {
	multi        MultiStageStore
	stageResults StageResultStore
	criteria     CriterionStore
	officers     OfficerStore
	candidates   CandidateStore
	appointments AppointmentStore
	configs      ConfigStore
	written      *SessionService
	auditor      *Auditor
	log          zerolog.Logger
}

// NewStageService creates a new StageService.
func NewStageService(
	multi MultiStageStore,
	stageResults StageResultStore,
	criteria CriterionStore,
	officers OfficerStore,
	candidates CandidateStore,
	appointments AppointmentStore,
	configs ConfigStore,
	written *SessionService,
	auditor *Auditor,
	log zerolog.Logger,
) *StageService {
	return &StageService{
		multi:        multi,
		stageResults: stageResults,
		criteria:     criteria,
		officers:     officers,
		candidates:   candidates,
		appointments: appointments,
		configs:      configs,
		written:      written,
		auditor:      auditor,
		log:          log.With().Str("component", "stage_service").Logger(),
	}
}

// Start begins a multi-stage session at the written stage, or returns the
// candidate's existing open session for the same configuration unchanged.
func (s *StageService) Start(ctx context.Context, candidateID uuid.UUID, req model.StartMultiStageRequest) (*model.MultiStageSession, error) {
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

	cfg, err := s.configs.GetActiveMultiStageByID(ctx, req.TestConfigID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("get config: %w", err)
	}

	appointmentID := req.AppointmentID
	if appointmentID == nil {
		verified, ok, err := s.appointments.VerifiedAppointmentToday(ctx, candidateID, cfg.ID)
		if err != nil {
			return nil, fmt.Errorf("check test access: %w", err)
		}
		if !ok {
			return nil, ErrTestAccessDenied
		}
		appointmentID = verified
	}

	existing, err := s.multi.GetOpenByCandidateAndConfig(ctx, candidateID, cfg.ID)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, fmt.Errorf("check open session: %w", err)
	}

	session := &model.MultiStageSession{
		ID:            uuid.New(),
		ConfigID:      cfg.ID,
		CandidateID:   candidateID,
		AppointmentID: appointmentID,
		CurrentStage:  model.StageWritten,
		Status:        model.MultiStageStatusActive,
	}

	if err := s.multi.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			winner, werr := s.multi.GetOpenByCandidateAndConfig(ctx, candidateID, cfg.ID)
			if werr != nil {
				return nil, fmt.Errorf("resolve concurrent start: %w", werr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("create multi-stage session: %w", err)
	}

	s.auditor.Record(ctx, model.AuditSessionStarted, session.ID.String(), candidateID.String(), cfg.Name)
	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("candidate_id", candidateID.String()).
		Msg("multi-stage session started")

	return session, nil
}

// GetSession retrieves a multi-stage session. viewerID restricts candidates
// to their own sessions; staff pass uuid.Nil.
func (s *StageService) GetSession(ctx context.Context, viewerID, sessionID uuid.UUID) (*model.MultiStageSession, error) {
	session, err := s.multi.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get multi-stage session: %w", err)
	}
	if viewerID != uuid.Nil && session.CandidateID != viewerID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// StartWrittenTest starts (or resumes) the timed written test driving the
// written stage, using the written-stage parameters of the multi-stage
// configuration.
func (s *StageService) StartWrittenTest(ctx context.Context, viewerID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.GetSession(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStage != model.StageWritten || !session.Status.Open() {
		return nil, ErrStageMismatch
	}

	cfg, err := s.configs.GetMultiStageByID(ctx, session.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	writtenCfg := cfg.WrittenTestConfiguration()
	writtenSession, err := s.written.createSession(ctx, session.CandidateID, &writtenCfg)
	if err != nil {
		return nil, err
	}

	if session.WrittenSessionID == nil || *session.WrittenSessionID != writtenSession.ID {
		if err := s.multi.SetWrittenSession(ctx, sessionID, writtenSession.ID); err != nil {
			return nil, fmt.Errorf("link written session: %w", err)
		}
	}

	return writtenSession, nil
}

// SubmitWrittenTest finalizes the written test and applies the stage outcome:
// the session advances to yard on a pass and fails outright otherwise.
func (s *StageService) SubmitWrittenTest(ctx context.Context, viewerID, sessionID uuid.UUID, req model.SubmitRequest) (*model.ExamResult, error) {
	session, err := s.GetSession(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStage != model.StageWritten || !session.Status.Open() {
		return nil, ErrStageMismatch
	}
	if session.WrittenSessionID == nil {
		return nil, ErrWrittenStagePending
	}

	writtenSession, err := s.written.sessions.GetByID(ctx, *session.WrittenSessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get written session: %w", err)
	}
	if writtenSession.Status != model.SessionStatusActive {
		if writtenSession.Status == model.SessionStatusExpired {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionNotActive
	}

	cfg, err := s.configs.GetMultiStageByID(ctx, session.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	result, err := s.written.finalize(ctx, writtenSession, req.Answers, cfg.WrittenPassMarkPercentage)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	passed := result.Passed
	slot := session.Slot(model.StageWritten)
	slot.Completed = true
	slot.Passed = &passed
	slot.EvaluatedBy = "written-test-engine"
	resultID := result.ID
	slot.ResultID = &resultID

	if passed {
		session.CurrentStage = model.StageYard
		session.Status = model.MultiStageStatusWrittenPassed
	} else {
		failedStage := model.StageWritten
		session.Status = model.MultiStageStatusFailed
		session.FailedStage = &failedStage
		session.FailedAt = &now
	}

	applied, err := s.multi.ApplyStageOutcome(ctx, session, model.StageWritten)
	if err != nil {
		return nil, fmt.Errorf("apply written outcome: %w", err)
	}
	if !applied {
		return nil, ErrStageMismatch
	}

	s.auditor.Record(ctx, model.AuditStageEvaluated, sessionID.String(), session.CandidateID.String(),
		fmt.Sprintf("written passed=%t score=%.2f", passed, result.ScorePercentage))

	return result, nil
}

// EvaluateStage scores a practical stage against its active criteria and
// applies the outcome.
//
// A critical criterion scored below its maximum fails the stage regardless of
// the aggregate percentage. Evaluation lines whose criterion is unknown or
// inactive for the stage contribute to neither the score nor the maximum.
// Every attempt is recorded as a StageResult, pass or fail.
func (s *StageService) EvaluateStage(ctx context.Context, officerID uuid.UUID, req model.EvaluateStageRequest) (*model.StageResult, error) {
	stage, err := model.ParseStage(req.Stage)
	if err != nil || !stage.Practical() {
		return nil, ErrInvalidStage
	}

	session, err := s.GetSession(ctx, uuid.Nil, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.Open() {
		return nil, ErrSessionNotActive
	}
	if session.CurrentStage != stage {
		return nil, ErrStageMismatch
	}

	cfg, err := s.configs.GetMultiStageByID(ctx, session.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	if cfg.RequiresOfficerAssignment {
		assignment := session.AssignmentFor(stage)
		if assignment == nil || assignment.OfficerID != officerID {
			return nil, ErrOfficerNotAssigned
		}
	}

	criteria, err := s.criteria.ListActiveByStage(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	criteriaByID := make(map[uuid.UUID]*model.EvaluationCriterion, len(criteria))
	for i := range criteria {
		criteriaByID[criteria[i].ID] = &criteria[i]
	}

	totalScore := 0
	maxScore := 0
	criticalPassed := true
	counted := make([]model.StageEvaluation, 0, len(req.Evaluations))
	for _, line := range req.Evaluations {
		criterion, ok := criteriaByID[line.CriterionID]
		if !ok {
			continue
		}
		score := line.Score
		if score > criterion.MaxScore {
			score = criterion.MaxScore
		}
		totalScore += score
		maxScore += criterion.MaxScore
		if criterion.IsCritical && score < criterion.MaxScore {
			criticalPassed = false
		}
		counted = append(counted, model.StageEvaluation{
			CriterionID: line.CriterionID,
			Score:       score,
			Notes:       line.Notes,
		})
	}

	percentage := 0.0
	if maxScore > 0 {
		percentage = math.Round(float64(totalScore)/float64(maxScore)*100*100) / 100
	}
	passMark := cfg.StagePassMark(stage)
	passed := criticalPassed && percentage >= float64(passMark)

	now := time.Now()
	stageResult := &model.StageResult{
		ID:               uuid.New(),
		SessionID:        session.ID,
		CandidateID:      session.CandidateID,
		ConfigID:         session.ConfigID,
		Stage:            stage,
		Evaluations:      counted,
		TotalScore:       totalScore,
		MaxPossibleScore: maxScore,
		ScorePercentage:  percentage,
		PassMark:         passMark,
		Passed:           passed,
		CriticalPassed:   criticalPassed,
		EvaluatedBy:      officerID,
		EvaluationNotes:  req.EvaluationNotes,
		EvaluatedAt:      now,
	}

	slot := session.Slot(stage)
	slot.Completed = true
	slotPassed := passed
	slot.Passed = &slotPassed
	slot.EvaluatedBy = officerID.String()
	resultID := stageResult.ID
	slot.ResultID = &resultID

	if passed {
		next := stage.Next()
		session.CurrentStage = next
		if next == model.StageCompleted {
			session.Status = model.MultiStageStatusCompleted
			session.CompletedAt = &now
		} else {
			session.Status = model.MultiStageStatusYardPassed
		}
	} else {
		failedStage := stage
		session.Status = model.MultiStageStatusFailed
		session.FailedStage = &failedStage
		session.FailedAt = &now
	}

	applied, err := s.multi.ApplyStageOutcome(ctx, session, stage)
	if err != nil {
		return nil, fmt.Errorf("apply stage outcome: %w", err)
	}
	if !applied {
		return nil, ErrStageMismatch
	}

	// The evaluation record is written win or lose; losing the transition
	// race above means no record, which is the correct ordering.
	if err := s.stageResults.Create(ctx, stageResult); err != nil {
		return nil, fmt.Errorf("persist stage result: %w", err)
	}

	s.auditor.Record(ctx, model.AuditStageEvaluated, session.ID.String(), officerID.String(),
		fmt.Sprintf("%s passed=%t score=%.2f critical=%t", stage, passed, percentage, criticalPassed))
	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("stage", string(stage)).
		Bool("passed", passed).
		Float64("score", percentage).
		Msg("stage evaluated")

	return stageResult, nil
}

// AssignOfficer assigns an active assessment officer to a practical stage of
// an open session. Reassigning a stage replaces the previous assignment.
func (s *StageService) AssignOfficer(ctx context.Context, managerID uuid.UUID, req model.AssignOfficerRequest) (*model.MultiStageSession, error) {
	stage, err := model.ParseStage(req.Stage)
	if err != nil || !stage.Practical() {
		return nil, ErrInvalidStage
	}

	session, err := s.GetSession(ctx, uuid.Nil, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.Open() {
		return nil, ErrSessionNotActive
	}

	officer, err := s.officers.GetActiveOfficer(ctx, req.OfficerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		return nil, fmt.Errorf("get officer: %w", err)
	}

	assignment := &model.OfficerAssignment{
		OfficerID:  officer.ID,
		AssignedBy: managerID,
		Notes:      req.Notes,
		AssignedAt: time.Now(),
	}
	if stage == model.StageYard {
		session.Assignments[0] = assignment
	} else {
		session.Assignments[1] = assignment
	}

	applied, err := s.multi.AssignOfficer(ctx, session.ID, session)
	if err != nil {
		return nil, fmt.Errorf("assign officer: %w", err)
	}
	if !applied {
		return nil, ErrSessionNotActive
	}

	s.auditor.Record(ctx, model.AuditOfficerAssigned, session.ID.String(), managerID.String(),
		fmt.Sprintf("%s -> %s", stage, officer.ID))

	return session, nil
}

// ListMyAssignments lists the open sessions where the officer is assigned to
// a practical stage.
func (s *StageService) ListMyAssignments(ctx context.Context, officerID uuid.UUID) ([]model.MultiStageSession, error) {
	sessions, err := s.multi.ListOpenByOfficer(ctx, officerID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return sessions, nil
}

// ListStageResults lists the evaluation attempts recorded for a session.
func (s *StageService) ListStageResults(ctx context.Context, sessionID uuid.UUID) ([]model.StageResult, error) {
	results, err := s.stageResults.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list stage results: %w", err)
	}
	return results, nil
}

// ListCriteria lists the active criteria for a practical stage, for the
// officer scoring UI.
func (s *StageService) ListCriteria(ctx context.Context, rawStage string) ([]model.EvaluationCriterion, error) {
	stage, err := model.ParseStage(rawStage)
	if err != nil || !stage.Practical() {
		return nil, ErrInvalidStage
	}
	criteria, err := s.criteria.ListActiveByStage(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return criteria, nil
}
