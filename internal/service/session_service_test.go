package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	svc          *SessionService
	sessions     *fakeSessionStore
	results      *fakeResultStore
	candidates   *fakeCandidateStore
	appointments *fakeAppointmentStore
	configs      *fakeConfigStore
	candidateID  uuid.UUID
	categoryID   uuid.UUID
	cfg          *model.TestConfiguration
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	categoryID := uuid.New()
	src := bankOf(categoryID, map[model.Difficulty]int{
		model.DifficultyEasy:   30,
		model.DifficultyMedium: 30,
		model.DifficultyHard:   30,
	})
	cfg := &model.TestConfiguration{
		ID:                     uuid.New(),
		Name:                   "Class B Written Test",
		CategoryID:             categoryID,
		TotalQuestions:         10,
		PassMarkPercentage:     70,
		TimeLimitMinutes:       30,
		DifficultyDistribution: model.DefaultDifficultyDistribution,
		IsActive:               true,
	}

	candidateID := uuid.New()
	f := &sessionFixture{
		sessions: newFakeSessionStore(),
		results:  &fakeResultStore{},
		candidates: &fakeCandidateStore{candidates: map[uuid.UUID]*model.Candidate{
			candidateID: {ID: candidateID, Status: model.CandidateStatusApproved},
		}},
		appointments: &fakeAppointmentStore{},
		configs: &fakeConfigStore{
			configs:      map[uuid.UUID]*model.TestConfiguration{cfg.ID: cfg},
			multiConfigs: map[uuid.UUID]*model.MultiStageConfiguration{},
		},
		candidateID: candidateID,
		categoryID:  categoryID,
		cfg:         cfg,
	}
	f.appointments.allow(candidateID, cfg.ID)

	f.svc = NewSessionService(
		f.sessions, f.results, f.candidates, f.appointments, f.configs,
		NewQuestionSelector(src), nil, nil, 30*time.Second, zerolog.Nop(),
	)
	return f
}

func (f *sessionFixture) start(t *testing.T) *model.ExamSession {
	t.Helper()
	session, err := f.svc.Start(context.Background(), f.candidateID, f.cfg.ID)
	require.NoError(t, err)
	return session
}

// stored reaches into the fake to manipulate persisted state directly.
func (f *sessionFixture) stored(id uuid.UUID) *model.ExamSession {
	return f.sessions.sessions[id]
}

func TestStartCreatesActiveSession(t *testing.T) {
	f := newSessionFixture(t)

	session := f.start(t)
	assert.Equal(t, model.SessionStatusActive, session.Status)
	assert.Equal(t, f.candidateID, session.CandidateID)
	assert.Len(t, session.Questions, 10)
	assert.WithinDuration(t, session.StartTime.Add(30*time.Minute), session.EndTime, time.Second)
}

func TestStartIsIdempotent(t *testing.T) {
	f := newSessionFixture(t)

	first := f.start(t)
	second := f.start(t)
	assert.Equal(t, first.ID, second.ID)
}

func TestStartRetiresDeadlinePassedSession(t *testing.T) {
	f := newSessionFixture(t)

	first := f.start(t)
	f.stored(first.ID).EndTime = time.Now().Add(-time.Hour)

	second := f.start(t)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.SessionStatusExpired, f.stored(first.ID).Status)
}

func TestStartRejectsUnknownCandidate(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Start(context.Background(), uuid.New(), f.cfg.ID)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestStartRejectsUnapprovedCandidate(t *testing.T) {
	f := newSessionFixture(t)
	pending := uuid.New()
	f.candidates.candidates[pending] = &model.Candidate{ID: pending, Status: model.CandidateStatusPending}

	_, err := f.svc.Start(context.Background(), pending, f.cfg.ID)
	assert.ErrorIs(t, err, ErrCandidateNotApproved)
}

func TestStartRejectsInactiveConfig(t *testing.T) {
	f := newSessionFixture(t)
	f.cfg.IsActive = false

	_, err := f.svc.Start(context.Background(), f.candidateID, f.cfg.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestStartRequiresVerifiedAppointment(t *testing.T) {
	f := newSessionFixture(t)
	f.appointments.verified = nil

	_, err := f.svc.Start(context.Background(), f.candidateID, f.cfg.ID)
	assert.ErrorIs(t, err, ErrTestAccessDenied)
}

func TestGetSessionLazyExpiry(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	f.stored(session.ID).EndTime = time.Now().Add(-time.Minute)

	got, err := f.svc.GetSession(context.Background(), f.candidateID, session.ID)
	require.NoError(t, err, "detecting expiry on read is not an error")
	assert.Equal(t, model.SessionStatusExpired, got.Status)
	assert.Equal(t, model.SessionStatusExpired, f.stored(session.ID).Status)
}

func TestGetSessionOwnership(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)

	_, err := f.svc.GetSession(context.Background(), uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrNotSessionOwner)

	// Staff skip the ownership check with a nil viewer.
	_, err = f.svc.GetSession(context.Background(), uuid.Nil, session.ID)
	assert.NoError(t, err)
}

func TestGetQuestionBoundsAndRedaction(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)

	// Indexing is 0-based: the valid range is [0, len), and the 1-based
	// position only appears as display metadata.
	_, err := f.svc.GetQuestion(context.Background(), f.candidateID, session.ID, -1)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	_, err = f.svc.GetQuestion(context.Background(), f.candidateID, session.ID, 10)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	first, err := f.svc.GetQuestion(context.Background(), f.candidateID, session.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, session.Questions[0].ID, first.ID)
	assert.Equal(t, 1, first.QuestionNumber)
	assert.Equal(t, 10, first.TotalQuestions)

	last, err := f.svc.GetQuestion(context.Background(), f.candidateID, session.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, session.Questions[9].ID, last.ID)
	assert.Equal(t, 10, last.QuestionNumber)
}

func TestSaveAnswerAndBookmark(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	questionID := session.Questions[2].ID

	err := f.svc.SaveAnswer(context.Background(), f.candidateID, session.ID, model.SaveAnswerRequest{
		QuestionID:     questionID,
		SelectedOption: strPtr("b"),
		IsBookmarked:   true,
	})
	require.NoError(t, err)

	q, err := f.svc.GetQuestion(context.Background(), f.candidateID, session.ID, 2)
	require.NoError(t, err)
	assert.True(t, q.IsBookmarked)
	require.NotNil(t, q.CurrentAnswer)
	assert.Equal(t, "B", *q.CurrentAnswer.SelectedOption, "labels are normalized on save")
}

func TestSaveAnswerRejectsQuestionOutsideSnapshot(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)

	err := f.svc.SaveAnswer(context.Background(), f.candidateID, session.ID, model.SaveAnswerRequest{
		QuestionID:     uuid.New(),
		SelectedOption: strPtr("A"),
	})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestSubmitScoresAndCompletes(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)

	// Every bank question's correct option is A.
	var answers []model.SubmittedAnswer
	for _, q := range session.Questions {
		answers = append(answers, model.SubmittedAnswer{QuestionID: q.ID, SelectedOption: strPtr("A")})
	}

	result, err := f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.ScorePercentage)
	assert.True(t, result.Passed)
	assert.Equal(t, 10, result.AnsweredQuestions)
	assert.Equal(t, f.cfg.PassMarkPercentage, result.PassMark)
	assert.Equal(t, model.SessionStatusCompleted, f.stored(session.ID).Status)
}

func TestSubmitPayloadOverridesSavedAnswers(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	questionID := session.Questions[0].ID

	require.NoError(t, f.svc.SaveAnswer(context.Background(), f.candidateID, session.ID, model.SaveAnswerRequest{
		QuestionID:     questionID,
		SelectedOption: strPtr("C"),
	}))

	result, err := f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{
		Answers: []model.SubmittedAnswer{{QuestionID: questionID, SelectedOption: strPtr("A")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectAnswers)
}

func TestSubmitTwiceFails(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)

	_, err := f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{})
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestSubmitWithinGraceWindow(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	f.stored(session.ID).EndTime = time.Now().Add(-10 * time.Second)

	_, err := f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{})
	assert.NoError(t, err)
}

func TestSubmitPastGraceWindowExpires(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	f.stored(session.ID).EndTime = time.Now().Add(-2 * time.Minute)

	_, err := f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, model.SessionStatusExpired, f.stored(session.ID).Status)

	// No result record exists for an expired session.
	_, err = f.svc.GetSessionResult(context.Background(), f.candidateID, session.ID)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestExtendTimeMovesDeadlineForward(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	originalEnd := session.EndTime

	extended, err := f.svc.ExtendTime(context.Background(), uuid.New(), session.ID, model.ExtendTimeRequest{
		AdditionalMinutes: 15,
		Reason:            "power outage at the test centre",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, originalEnd.Add(15*time.Minute), extended.EndTime, time.Second)
	require.Len(t, extended.TimeEvents, 1)
	assert.Equal(t, model.TimeEventExtend, extended.TimeEvents[0].Kind)
	assert.Equal(t, 15, extended.TimeEvents[0].AdditionalMinutes)
}

func TestExtendTimeRequiresActiveSession(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	f.stored(session.ID).Status = model.SessionStatusCompleted

	_, err := f.svc.ExtendTime(context.Background(), uuid.New(), session.ID, model.ExtendTimeRequest{AdditionalMinutes: 5})
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestResetTimeRestoresFullLimit(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	f.stored(session.ID).EndTime = time.Now().Add(2 * time.Minute)

	reset, err := f.svc.ResetTime(context.Background(), uuid.New(), session.ID, "hardware fault")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), reset.EndTime, time.Second)
	require.Len(t, reset.TimeEvents, 1)
	assert.Equal(t, model.TimeEventReset, reset.TimeEvents[0].Kind)
	assert.Equal(t, 30, reset.TimeEvents[0].ResetToMinutes)
}

func TestGetSessionResultOwnership(t *testing.T) {
	f := newSessionFixture(t)
	session := f.start(t)
	_, err := f.svc.Submit(context.Background(), f.candidateID, session.ID, model.SubmitRequest{})
	require.NoError(t, err)

	_, err = f.svc.GetSessionResult(context.Background(), uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrNotSessionOwner)

	result, err := f.svc.GetSessionResult(context.Background(), f.candidateID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, result.SessionID)
}

func TestGetResultNotFound(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.GetResult(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrResultNotFound)
}
