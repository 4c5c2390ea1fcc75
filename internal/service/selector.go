package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/model"
)

// QuestionSource is the read-only question-bank access the selector needs.
// Implemented by repository.QuestionRepository.
type QuestionSource interface {
	ListApproved(ctx context.Context, categoryID uuid.UUID, difficulty model.Difficulty, limit int) ([]model.Question, error)
	ListApprovedExcluding(ctx context.Context, categoryID uuid.UUID, exclude []uuid.UUID, limit int) ([]model.Question, error)
}

// QuestionSelector assembles a randomized, deduplicated question set sized to
// a configuration's total, honoring its difficulty distribution.
type QuestionSelector struct {
	questions QuestionSource
}

// NewQuestionSelector creates a new QuestionSelector.
func NewQuestionSelector(questions QuestionSource) *QuestionSelector {
	return &QuestionSelector{questions: questions}
}

// Select picks cfg.TotalQuestions approved questions from cfg's category.
//
// Per difficulty bucket it needs round(percentage/100 * total) questions and
// oversamples 2x before shuffling, so the picked subset varies between
// calls. Buckets that run short are backfilled from any remaining approved
// questions in the category. The final set is shuffled again so bucket order
// is not observable. No selection seed is persisted; two starts for the same
// configuration may legitimately produce different papers.
//
// Returns *InsufficientQuestionsError when the category cannot fill the
// configured total even after backfill.
func (s *QuestionSelector) Select(ctx context.Context, cfg *model.TestConfiguration) ([]model.Question, error) {
	dist := cfg.DifficultyDistribution
	if len(dist) == 0 {
		dist = model.DefaultDifficultyDistribution
	}

	selected := make([]model.Question, 0, cfg.TotalQuestions)
	seen := make(map[uuid.UUID]struct{}, cfg.TotalQuestions)

	for _, difficulty := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		percentage, ok := dist[difficulty]
		if !ok || percentage <= 0 {
			continue
		}

		needed := int(math.Round(float64(percentage) / 100 * float64(cfg.TotalQuestions)))
		if needed == 0 {
			continue
		}

		pool, err := s.questions.ListApproved(ctx, cfg.CategoryID, difficulty, needed*2)
		if err != nil {
			return nil, fmt.Errorf("list %s questions: %w", difficulty, err)
		}

		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		for _, q := range pool {
			if len(selected) >= cfg.TotalQuestions || needed == 0 {
				break
			}
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			selected = append(selected, q)
			needed--
		}
	}

	// Backfill from any remaining approved questions when buckets ran short.
	if len(selected) < cfg.TotalQuestions {
		exclude := make([]uuid.UUID, 0, len(selected))
		for id := range seen {
			exclude = append(exclude, id)
		}

		extra, err := s.questions.ListApprovedExcluding(ctx, cfg.CategoryID, exclude, cfg.TotalQuestions-len(selected))
		if err != nil {
			return nil, fmt.Errorf("backfill questions: %w", err)
		}
		for _, q := range extra {
			if len(selected) >= cfg.TotalQuestions {
				break
			}
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			selected = append(selected, q)
		}
	}

	if len(selected) < cfg.TotalQuestions {
		return nil, &InsufficientQuestionsError{Required: cfg.TotalQuestions, Available: len(selected)}
	}

	rand.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })

	return selected, nil
}
