package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectOptionLabel(t *testing.T) {
	q := Question{Options: []QuestionOption{
		{Text: "first"},
		{Text: "second"},
		{Text: "third", IsCorrect: true},
	}}
	assert.Equal(t, "C", q.CorrectOptionLabel())

	none := Question{Options: []QuestionOption{{Text: "only"}}}
	assert.Equal(t, "", none.CorrectOptionLabel())
}

func TestRedactStripsAnswers(t *testing.T) {
	correct := true
	q := Question{
		ID:            uuid.New(),
		QuestionType:  QuestionTypeMultipleChoice,
		QuestionText:  "pick one",
		CorrectAnswer: &correct,
		Explanation:   "because",
		Options: []QuestionOption{
			{Text: "a", IsCorrect: true},
			{Text: "b"},
		},
	}

	redacted := q.Redact()
	assert.Equal(t, q.ID, redacted.ID)
	require.Len(t, redacted.Options, 2)
	assert.Equal(t, "a", redacted.Options[0].Text)
	// RedactedOption carries no correctness flag; the struct has only Text.
}

func TestSubmittedAnswerAnswered(t *testing.T) {
	assert.False(t, SubmittedAnswer{}.Answered())

	label := "A"
	assert.True(t, SubmittedAnswer{SelectedOption: &label}.Answered())

	v := false
	assert.True(t, SubmittedAnswer{BooleanAnswer: &v}.Answered())
}
