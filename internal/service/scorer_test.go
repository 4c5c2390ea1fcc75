package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcQuestion(correctIndex int) model.Question {
	options := make([]model.QuestionOption, 4)
	for i := range options {
		options[i] = model.QuestionOption{Text: "option"}
	}
	options[correctIndex].IsCorrect = true
	return model.Question{
		ID:           uuid.New(),
		QuestionType: model.QuestionTypeMultipleChoice,
		QuestionText: "pick one",
		Options:      options,
	}
}

func tfQuestion(correct bool) model.Question {
	return model.Question{
		ID:            uuid.New(),
		QuestionType:  model.QuestionTypeTrueFalse,
		QuestionText:  "true or false",
		CorrectAnswer: &correct,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestScoreSnapshotMultipleChoice(t *testing.T) {
	q1 := mcQuestion(1) // correct = B
	q2 := mcQuestion(2) // correct = C
	snapshot := []model.Question{q1, q2}

	answers := map[uuid.UUID]model.SubmittedAnswer{
		q1.ID: {QuestionID: q1.ID, SelectedOption: strPtr("B")},
		q2.ID: {QuestionID: q2.ID, SelectedOption: strPtr("A")},
	}

	summary := ScoreSnapshot(snapshot, answers)
	assert.Equal(t, 2, summary.TotalQuestions)
	assert.Equal(t, 2, summary.AnsweredQuestions)
	assert.Equal(t, 1, summary.CorrectAnswers)
	assert.Equal(t, 50.0, summary.ScorePercentage)
	require.Len(t, summary.QuestionResults, 2)
	assert.True(t, summary.QuestionResults[0].IsCorrect)
	assert.False(t, summary.QuestionResults[1].IsCorrect)
	assert.Equal(t, "B", summary.QuestionResults[0].CorrectAnswer)
}

func TestScoreSnapshotLabelNormalization(t *testing.T) {
	q := mcQuestion(0)
	answers := map[uuid.UUID]model.SubmittedAnswer{
		q.ID: {QuestionID: q.ID, SelectedOption: strPtr(" a ")},
	}

	summary := ScoreSnapshot([]model.Question{q}, answers)
	assert.Equal(t, 1, summary.CorrectAnswers)
}

func TestScoreSnapshotTrueFalse(t *testing.T) {
	q1 := tfQuestion(true)
	q2 := tfQuestion(false)
	answers := map[uuid.UUID]model.SubmittedAnswer{
		q1.ID: {QuestionID: q1.ID, BooleanAnswer: boolPtr(true)},
		q2.ID: {QuestionID: q2.ID, BooleanAnswer: boolPtr(true)},
	}

	summary := ScoreSnapshot([]model.Question{q1, q2}, answers)
	assert.Equal(t, 1, summary.CorrectAnswers)
	assert.Equal(t, 50.0, summary.ScorePercentage)
}

func TestScoreSnapshotVideoNeverCorrect(t *testing.T) {
	q := model.Question{
		ID:           uuid.New(),
		QuestionType: model.QuestionTypeVideoEmbedded,
		QuestionText: "watch the clip",
	}
	answers := map[uuid.UUID]model.SubmittedAnswer{
		q.ID: {QuestionID: q.ID, SelectedOption: strPtr("A")},
	}

	summary := ScoreSnapshot([]model.Question{q}, answers)
	assert.Equal(t, 0, summary.CorrectAnswers)
	assert.Equal(t, 0.0, summary.ScorePercentage)
}

func TestScoreSnapshotUnansweredExcludedFromAnsweredCount(t *testing.T) {
	q1 := mcQuestion(0)
	q2 := mcQuestion(0)

	summary := ScoreSnapshot([]model.Question{q1, q2}, map[uuid.UUID]model.SubmittedAnswer{
		q1.ID: {QuestionID: q1.ID, SelectedOption: strPtr("A")},
	})
	assert.Equal(t, 1, summary.AnsweredQuestions)
	assert.Equal(t, 2, summary.TotalQuestions)
	// Unanswered questions still get a breakdown line.
	require.Len(t, summary.QuestionResults, 2)
	assert.False(t, summary.QuestionResults[1].Answered)
}

func TestScoreSnapshotIgnoresAnswersOutsideSnapshot(t *testing.T) {
	q := mcQuestion(0)
	stray := uuid.New()

	summary := ScoreSnapshot([]model.Question{q}, map[uuid.UUID]model.SubmittedAnswer{
		stray: {QuestionID: stray, SelectedOption: strPtr("A")},
	})
	assert.Equal(t, 0, summary.AnsweredQuestions)
	assert.Equal(t, 0, summary.CorrectAnswers)
}

func TestScoreSnapshotRoundsToTwoDecimals(t *testing.T) {
	// 1 of 3 correct = 33.333...%
	q1, q2, q3 := mcQuestion(0), mcQuestion(0), mcQuestion(0)
	summary := ScoreSnapshot([]model.Question{q1, q2, q3}, map[uuid.UUID]model.SubmittedAnswer{
		q1.ID: {QuestionID: q1.ID, SelectedOption: strPtr("A")},
	})
	assert.Equal(t, 33.33, summary.ScorePercentage)
}

func TestScoreSnapshotEmpty(t *testing.T) {
	summary := ScoreSnapshot(nil, nil)
	assert.Equal(t, 0, summary.TotalQuestions)
	assert.Equal(t, 0.0, summary.ScorePercentage)
	assert.Empty(t, summary.QuestionResults)
}
