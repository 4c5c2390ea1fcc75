package service

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/model"
)

// ScoreSummary is the pure scoring output for a answer set against a
// question snapshot.
type ScoreSummary struct {
	TotalQuestions    int
	AnsweredQuestions int
	CorrectAnswers    int
	ScorePercentage   float64
	QuestionResults   []model.QuestionResult
}

// ScoreSnapshot grades a submitted answer set against a frozen question
// snapshot. Every snapshot question produces exactly one breakdown line,
// answered or not. Answers whose question id is not in the snapshot are
// ignored.
//
// Multiple-choice answers are compared by letter label against the position of
// the option flagged correct. True/false answers compare booleans.
// Video-embedded questions are informational and never score as correct.
func ScoreSnapshot(snapshot []model.Question, answers map[uuid.UUID]model.SubmittedAnswer) ScoreSummary {
	summary := ScoreSummary{
		TotalQuestions:  len(snapshot),
		QuestionResults: make([]model.QuestionResult, 0, len(snapshot)),
	}

	for i := range snapshot {
		q := &snapshot[i]
		line := model.QuestionResult{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
		}

		answer, answered := answers[q.ID]
		answered = answered && answer.Answered()
		line.Answered = answered
		if answered {
			summary.AnsweredQuestions++
		}

		switch q.QuestionType {
		case model.QuestionTypeMultipleChoice:
			correct := q.CorrectOptionLabel()
			line.CorrectAnswer = correct
			if answered && answer.SelectedOption != nil {
				selected := strings.ToUpper(strings.TrimSpace(*answer.SelectedOption))
				line.UserAnswer = selected
				line.IsCorrect = correct != "" && selected == correct
			}
		case model.QuestionTypeTrueFalse:
			if q.CorrectAnswer != nil {
				line.CorrectAnswer = *q.CorrectAnswer
			}
			if answered && answer.BooleanAnswer != nil {
				line.UserAnswer = *answer.BooleanAnswer
				line.IsCorrect = q.CorrectAnswer != nil && *answer.BooleanAnswer == *q.CorrectAnswer
			}
		case model.QuestionTypeVideoEmbedded:
			// No correct answer exists; always ungraded.
		}

		if line.IsCorrect {
			summary.CorrectAnswers++
		}
		summary.QuestionResults = append(summary.QuestionResults, line)
	}

	if summary.TotalQuestions > 0 {
		pct := float64(summary.CorrectAnswers) / float64(summary.TotalQuestions) * 100
		summary.ScorePercentage = math.Round(pct*100) / 100
	}

	return summary
}
