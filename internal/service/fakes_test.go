package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/repository"
)

// In-memory store fakes mirroring the conditional-update semantics of the
// Postgres repositories: mutations only apply in the expected status, and a
// start colliding with an existing active row surfaces as pgx.ErrNoRows.

type fakeQuestionSource struct {
	questions []model.Question
}

func (f *fakeQuestionSource) ListApproved(_ context.Context, categoryID uuid.UUID, difficulty model.Difficulty, limit int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.CategoryID == categoryID && q.Difficulty == difficulty && q.Status == model.QuestionStatusApproved {
			out = append(out, q)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeQuestionSource) ListApprovedExcluding(_ context.Context, categoryID uuid.UUID, exclude []uuid.UUID, limit int) ([]model.Question, error) {
	excluded := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []model.Question
	for _, q := range f.questions {
		if q.CategoryID != categoryID || q.Status != model.QuestionStatusApproved {
			continue
		}
		if _, skip := excluded[q.ID]; skip {
			continue
		}
		out = append(out, q)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	sessions map[uuid.UUID]*model.ExamSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uuid.UUID]*model.ExamSession{}}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	for _, existing := range f.sessions {
		if existing.CandidateID == s.CandidateID && existing.ConfigID == s.ConfigID &&
			existing.Status == model.SessionStatusActive {
			return pgx.ErrNoRows
		}
	}
	s.CreatedAt = time.Now()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) GetActiveByCandidateAndConfig(_ context.Context, candidateID, configID uuid.UUID) (*model.ExamSession, error) {
	for _, s := range f.sessions {
		if s.CandidateID == candidateID && s.ConfigID == configID && s.Status == model.SessionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) SaveAnswer(_ context.Context, sessionID, questionID uuid.UUID, answer *model.SubmittedAnswer, bookmark bool) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive {
		return false, nil
	}
	if answer != nil {
		if s.Answers == nil {
			s.Answers = map[uuid.UUID]model.SubmittedAnswer{}
		}
		s.Answers[questionID] = *answer
	}
	if bookmark && !s.IsBookmarked(questionID) {
		s.Bookmarks = append(s.Bookmarks, questionID)
	} else if !bookmark {
		for i, id := range s.Bookmarks {
			if id == questionID {
				s.Bookmarks = append(s.Bookmarks[:i], s.Bookmarks[i+1:]...)
				break
			}
		}
	}
	return true, nil
}

func (f *fakeSessionStore) AppendTimeEvent(_ context.Context, sessionID uuid.UUID, event model.TimeEvent, newEndTime time.Time) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive {
		return false, nil
	}
	s.TimeEvents = append(s.TimeEvents, event)
	s.EndTime = newEndTime
	return true, nil
}

func (f *fakeSessionStore) Complete(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive {
		return false, nil
	}
	s.Status = model.SessionStatusCompleted
	return true, nil
}

func (f *fakeSessionStore) MarkExpired(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive {
		return false, nil
	}
	s.Status = model.SessionStatusExpired
	return true, nil
}

type fakeResultStore struct {
	results []model.ExamResult
}

func (f *fakeResultStore) Create(_ context.Context, res *model.ExamResult) error {
	f.results = append(f.results, *res)
	return nil
}

func (f *fakeResultStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamResult, error) {
	for i := range f.results {
		if f.results[i].ID == id {
			cp := f.results[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResultStore) GetBySessionID(_ context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	for i := range f.results {
		if f.results[i].SessionID == sessionID {
			cp := f.results[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResultStore) List(_ context.Context, candidateID, configID *uuid.UUID, limit int) ([]model.ExamResult, error) {
	var out []model.ExamResult
	for _, r := range f.results {
		if candidateID != nil && r.CandidateID != *candidateID {
			continue
		}
		if configID != nil && r.ConfigID != *configID {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeCandidateStore struct {
	candidates map[uuid.UUID]*model.Candidate
}

func (f *fakeCandidateStore) GetByID(_ context.Context, id uuid.UUID) (*model.Candidate, error) {
	c, ok := f.candidates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

type fakeAppointmentStore struct {
	verified map[uuid.UUID]map[uuid.UUID]uuid.UUID // candidate -> config -> appointment
}

func (f *fakeAppointmentStore) allow(candidateID, configID uuid.UUID) uuid.UUID {
	if f.verified == nil {
		f.verified = map[uuid.UUID]map[uuid.UUID]uuid.UUID{}
	}
	if f.verified[candidateID] == nil {
		f.verified[candidateID] = map[uuid.UUID]uuid.UUID{}
	}
	id := uuid.New()
	f.verified[candidateID][configID] = id
	return id
}

func (f *fakeAppointmentStore) VerifiedAppointmentToday(_ context.Context, candidateID, configID uuid.UUID) (*uuid.UUID, bool, error) {
	id, ok := f.verified[candidateID][configID]
	if !ok {
		return nil, false, nil
	}
	return &id, true, nil
}

type fakeConfigStore struct {
	configs      map[uuid.UUID]*model.TestConfiguration
	multiConfigs map[uuid.UUID]*model.MultiStageConfiguration
}

func (f *fakeConfigStore) GetActiveByID(ctx context.Context, id uuid.UUID) (*model.TestConfiguration, error) {
	c, err := f.GetByID(ctx, id)
	if err != nil || !c.IsActive {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeConfigStore) GetByID(_ context.Context, id uuid.UUID) (*model.TestConfiguration, error) {
	c, ok := f.configs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeConfigStore) GetActiveMultiStageByID(ctx context.Context, id uuid.UUID) (*model.MultiStageConfiguration, error) {
	c, err := f.GetMultiStageByID(ctx, id)
	if err != nil || !c.IsActive {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeConfigStore) GetMultiStageByID(_ context.Context, id uuid.UUID) (*model.MultiStageConfiguration, error) {
	c, ok := f.multiConfigs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

type fakeMultiStageStore struct {
	sessions map[uuid.UUID]*model.MultiStageSession
}

func newFakeMultiStageStore() *fakeMultiStageStore {
	return &fakeMultiStageStore{sessions: map[uuid.UUID]*model.MultiStageSession{}}
}

func (f *fakeMultiStageStore) Create(_ context.Context, s *model.MultiStageSession) error {
	for _, existing := range f.sessions {
		if existing.CandidateID == s.CandidateID && existing.ConfigID == s.ConfigID &&
			existing.Status.Open() {
			return pgx.ErrNoRows
		}
	}
	s.CreatedAt = time.Now()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeMultiStageStore) GetByID(_ context.Context, id uuid.UUID) (*model.MultiStageSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeMultiStageStore) GetOpenByCandidateAndConfig(_ context.Context, candidateID, configID uuid.UUID) (*model.MultiStageSession, error) {
	for _, s := range f.sessions {
		if s.CandidateID == candidateID && s.ConfigID == configID && s.Status.Open() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeMultiStageStore) ApplyStageOutcome(_ context.Context, s *model.MultiStageSession, expectStage model.Stage) (bool, error) {
	stored, ok := f.sessions[s.ID]
	if !ok || stored.CurrentStage != expectStage || !stored.Status.Open() {
		return false, nil
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return true, nil
}

func (f *fakeMultiStageStore) SetWrittenSession(_ context.Context, id, writtenSessionID uuid.UUID) error {
	s, ok := f.sessions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.WrittenSessionID = &writtenSessionID
	return nil
}

func (f *fakeMultiStageStore) AssignOfficer(_ context.Context, id uuid.UUID, s *model.MultiStageSession) (bool, error) {
	stored, ok := f.sessions[id]
	if !ok || !stored.Status.Open() {
		return false, nil
	}
	stored.Assignments = s.Assignments
	return true, nil
}

func (f *fakeMultiStageStore) ListOpenByOfficer(_ context.Context, officerID uuid.UUID) ([]model.MultiStageSession, error) {
	var out []model.MultiStageSession
	for _, s := range f.sessions {
		if !s.Status.Open() {
			continue
		}
		for _, a := range s.Assignments {
			if a != nil && a.OfficerID == officerID {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

type fakeStageResultStore struct {
	results []model.StageResult
}

func (f *fakeStageResultStore) Create(_ context.Context, res *model.StageResult) error {
	f.results = append(f.results, *res)
	return nil
}

func (f *fakeStageResultStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.StageResult, error) {
	var out []model.StageResult
	for _, r := range f.results {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCriterionStore struct {
	criteria []model.EvaluationCriterion
}

func (f *fakeCriterionStore) ListActiveByStage(_ context.Context, stage model.Stage) ([]model.EvaluationCriterion, error) {
	var out []model.EvaluationCriterion
	for _, c := range f.criteria {
		if c.Stage == stage && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeOfficerStore struct {
	officers map[uuid.UUID]*repository.User
}

func (f *fakeOfficerStore) GetActiveOfficer(_ context.Context, id uuid.UUID) (*repository.User, error) {
	o, ok := f.officers[id]
	if !ok || !o.IsActive {
		return nil, pgx.ErrNoRows
	}
	return o, nil
}
