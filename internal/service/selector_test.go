package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankOf(categoryID uuid.UUID, counts map[model.Difficulty]int) *fakeQuestionSource {
	src := &fakeQuestionSource{}
	for difficulty, n := range counts {
		for i := 0; i < n; i++ {
			src.questions = append(src.questions, model.Question{
				ID:           uuid.New(),
				CategoryID:   categoryID,
				QuestionType: model.QuestionTypeMultipleChoice,
				QuestionText: "sample",
				Options: []model.QuestionOption{
					{Text: "right", IsCorrect: true},
					{Text: "wrong"},
					{Text: "wrong"},
				},
				Difficulty: difficulty,
				Status:     model.QuestionStatusApproved,
			})
		}
	}
	return src
}

func TestSelectHonorsDistribution(t *testing.T) {
	categoryID := uuid.New()
	src := bankOf(categoryID, map[model.Difficulty]int{
		model.DifficultyEasy:   30,
		model.DifficultyMedium: 30,
		model.DifficultyHard:   30,
	})
	selector := NewQuestionSelector(src)

	cfg := &model.TestConfiguration{
		ID:                     uuid.New(),
		CategoryID:             categoryID,
		TotalQuestions:         20,
		DifficultyDistribution: model.DifficultyDistribution{"easy": 30, "medium": 50, "hard": 20},
	}

	questions, err := selector.Select(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, questions, 20)

	byDifficulty := map[model.Difficulty]int{}
	seen := map[uuid.UUID]struct{}{}
	for _, q := range questions {
		byDifficulty[q.Difficulty]++
		seen[q.ID] = struct{}{}
	}
	assert.Len(t, seen, 20, "no duplicate questions")
	assert.Equal(t, 6, byDifficulty[model.DifficultyEasy])
	assert.Equal(t, 10, byDifficulty[model.DifficultyMedium])
	assert.Equal(t, 4, byDifficulty[model.DifficultyHard])
}

func TestSelectBackfillsShortBuckets(t *testing.T) {
	categoryID := uuid.New()
	src := bankOf(categoryID, map[model.Difficulty]int{
		model.DifficultyEasy:   20,
		model.DifficultyMedium: 2, // bucket wants 10
		model.DifficultyHard:   5,
	})
	selector := NewQuestionSelector(src)

	cfg := &model.TestConfiguration{
		ID:                     uuid.New(),
		CategoryID:             categoryID,
		TotalQuestions:         20,
		DifficultyDistribution: model.DefaultDifficultyDistribution,
	}

	questions, err := selector.Select(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, questions, 20)

	seen := map[uuid.UUID]struct{}{}
	for _, q := range questions {
		seen[q.ID] = struct{}{}
	}
	assert.Len(t, seen, 20)
}

func TestSelectInsufficientQuestions(t *testing.T) {
	categoryID := uuid.New()
	src := bankOf(categoryID, map[model.Difficulty]int{
		model.DifficultyEasy: 5,
	})
	selector := NewQuestionSelector(src)

	cfg := &model.TestConfiguration{
		ID:                     uuid.New(),
		CategoryID:             categoryID,
		TotalQuestions:         20,
		DifficultyDistribution: model.DefaultDifficultyDistribution,
	}

	_, err := selector.Select(context.Background(), cfg)
	var insufficientErr *InsufficientQuestionsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 20, insufficientErr.Required)
	assert.Equal(t, 5, insufficientErr.Available)
}

func TestSelectEmptyDistributionFallsBackToDefault(t *testing.T) {
	categoryID := uuid.New()
	src := bankOf(categoryID, map[model.Difficulty]int{
		model.DifficultyEasy:   20,
		model.DifficultyMedium: 20,
		model.DifficultyHard:   20,
	})
	selector := NewQuestionSelector(src)

	cfg := &model.TestConfiguration{
		ID:             uuid.New(),
		CategoryID:     categoryID,
		TotalQuestions: 10,
	}

	questions, err := selector.Select(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, questions, 10)
}

func TestSelectIgnoresOtherCategories(t *testing.T) {
	categoryID := uuid.New()
	src := bankOf(categoryID, map[model.Difficulty]int{model.DifficultyEasy: 10})
	other := bankOf(uuid.New(), map[model.Difficulty]int{model.DifficultyEasy: 50})
	src.questions = append(src.questions, other.questions...)
	selector := NewQuestionSelector(src)

	cfg := &model.TestConfiguration{
		ID:                     uuid.New(),
		CategoryID:             categoryID,
		TotalQuestions:         10,
		DifficultyDistribution: model.DifficultyDistribution{"easy": 100},
	}

	questions, err := selector.Select(context.Background(), cfg)
	require.NoError(t, err)
	for _, q := range questions {
		assert.Equal(t, categoryID, q.CategoryID)
	}
}
