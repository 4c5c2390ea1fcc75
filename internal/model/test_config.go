package model

import (
	"time"

	"github.com/google/uuid"
)

// DifficultyDistribution maps a difficulty level to the percentage of the
// total question count it should contribute. Percentages sum to 100.
type DifficultyDistribution map[Difficulty]int

// DefaultDifficultyDistribution mirrors the authority's standard written-test mix.
var DefaultDifficultyDistribution = DifficultyDistribution{
	DifficultyEasy:   30,
	DifficultyMedium: 50,
	DifficultyHard:   20,
}

// TestConfiguration describes a single-stage written test. Configurations are
// authored outside this service and read-only to the session core.
type TestConfiguration struct {
	ID                     uuid.UUID              `json:"id"`
	Name                   string                 `json:"name"`
	Description            string                 `json:"description,omitempty"`
	CategoryID             uuid.UUID              `json:"category_id"`
	TotalQuestions         int                    `json:"total_questions"`
	PassMarkPercentage     int                    `json:"pass_mark_percentage"`
	TimeLimitMinutes       int                    `json:"time_limit_minutes"`
	DifficultyDistribution DifficultyDistribution `json:"difficulty_distribution"`
	IsActive               bool                   `json:"is_active"`
	CreatedAt              time.Time              `json:"created_at"`
}

// MultiStageConfiguration describes a written → yard → road test. The written
// stage carries its own single-stage parameters; practical stages only need a
// pass mark since they are scored against evaluation criteria.
type MultiStageConfiguration struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  uuid.UUID `json:"category_id"`

	WrittenTotalQuestions         int                    `json:"written_total_questions"`
	WrittenPassMarkPercentage     int                    `json:"written_pass_mark_percentage"`
	WrittenTimeLimitMinutes       int                    `json:"written_time_limit_minutes"`
	WrittenDifficultyDistribution DifficultyDistribution `json:"written_difficulty_distribution"`

	YardPassMarkPercentage int `json:"yard_pass_mark_percentage"`
	RoadPassMarkPercentage int `json:"road_pass_mark_percentage"`

	// RequiresOfficerAssignment gates evaluate-stage on the officer actually
	// assigned to the stage rather than any officer holding the permission.
	RequiresOfficerAssignment bool      `json:"requires_officer_assignment"`
	IsActive                  bool      `json:"is_active"`
	CreatedAt                 time.Time `json:"created_at"`
}

// WrittenTestConfiguration projects the written-stage parameters into a
// single-stage configuration so the written stage runs through the same
// selector, timer, and scorer as a standalone written test.
func (c *MultiStageConfiguration) WrittenTestConfiguration() TestConfiguration {
	return TestConfiguration{
		ID:                     c.ID,
		Name:                   c.Name + " (written stage)",
		CategoryID:             c.CategoryID,
		TotalQuestions:         c.WrittenTotalQuestions,
		PassMarkPercentage:     c.WrittenPassMarkPercentage,
		TimeLimitMinutes:       c.WrittenTimeLimitMinutes,
		DifficultyDistribution: c.WrittenDifficultyDistribution,
		IsActive:               c.IsActive,
	}
}

// StagePassMark returns the configured pass mark for a practical stage.
func (c *MultiStageConfiguration) StagePassMark(stage Stage) int {
	switch stage {
	case StageYard:
		return c.YardPassMarkPercentage
	case StageRoad:
		return c.RoadPassMarkPercentage
	default:
		return c.WrittenPassMarkPercentage
	}
}
