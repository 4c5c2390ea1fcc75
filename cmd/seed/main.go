package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/database"
	"github.com/licensa/dlexam-backend/internal/logger"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/service"
	"golang.org/x/term"
)

// Seeds a development database: a question bank, one single-stage and one
// multi-stage configuration, evaluation criteria, staff accounts, an approved
// candidate with a verified appointment for today, and an administrator whose
// password is prompted interactively.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(cfg, nil)

	fmt.Println("=== DL Exam Backend Seeder ===")

	// ─── Administrator (interactive) ──────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter administrator email: ")
	adminEmail, _ := reader.ReadString('\n')
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		fmt.Println("Error: email is required")
		return
	}

	fmt.Print("Enter administrator password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	if len(bytePassword) < 6 {
		fmt.Println("Error: password must be at least 6 characters")
		return
	}

	adminHash, err := authService.HashPassword(string(bytePassword))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash administrator password")
	}

	if err := seedUser(ctx, pool, adminEmail, "System Administrator", model.RoleAdministrator, adminHash); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed administrator")
	}
	fmt.Printf("Administrator %s ready\n", adminEmail)

	// ─── Staff accounts ───────────────────────────────────────────────
	staffHash, err := authService.HashPassword("changeme123")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash staff password")
	}
	staff := []struct {
		email string
		name  string
		role  model.Role
	}{
		{"officer.daniels@dlexam.test", "K. Daniels", model.RoleOfficer},
		{"officer.morris@dlexam.test", "A. Morris", model.RoleOfficer},
		{"manager.reid@dlexam.test", "T. Reid", model.RoleManager},
	}
	for _, s := range staff {
		if err := seedUser(ctx, pool, s.email, s.name, s.role, staffHash); err != nil {
			log.Fatal().Err(err).Str("email", s.email).Msg("Failed to seed staff user")
		}
	}
	fmt.Printf("Seeded %d staff accounts (password: changeme123)\n", len(staff))

	// ─── Question bank ────────────────────────────────────────────────
	categoryID := uuid.MustParse("7b0c8c64-1111-4b6e-9f3a-0de16a1b0001")
	total := 0
	for _, difficulty := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		for i := 0; i < 20; i++ {
			q := sampleQuestion(categoryID, difficulty, i)
			optionsJSON, _ := json.Marshal(q.Options)
			_, err := pool.Exec(ctx,
				`INSERT INTO questions
				   (id, category_id, question_type, question_text, options, correct_answer,
				    video_url, explanation, difficulty, status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				 ON CONFLICT (id) DO NOTHING`,
				q.ID, q.CategoryID, q.QuestionType, q.QuestionText, optionsJSON, q.CorrectAnswer,
				q.VideoURL, q.Explanation, q.Difficulty, model.QuestionStatusApproved)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to seed question")
			}
			total++
		}
	}
	fmt.Printf("Seeded %d approved questions\n", total)

	// ─── Configurations ───────────────────────────────────────────────
	singleConfigID := uuid.MustParse("7b0c8c64-2222-4b6e-9f3a-0de16a1b0001")
	distJSON, _ := json.Marshal(model.DefaultDifficultyDistribution)
	_, err = pool.Exec(ctx,
		`INSERT INTO test_configurations
		   (id, name, description, category_id, total_questions, pass_mark_percentage,
		    time_limit_minutes, difficulty_distribution, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		 ON CONFLICT (id) DO NOTHING`,
		singleConfigID, "Class B Written Test", "Standard knowledge test for class B licences",
		categoryID, 20, 75, 30, distJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed test configuration")
	}

	multiConfigID := uuid.MustParse("7b0c8c64-3333-4b6e-9f3a-0de16a1b0001")
	_, err = pool.Exec(ctx,
		`INSERT INTO multi_stage_configurations
		   (id, name, description, category_id,
		    written_total_questions, written_pass_mark_percentage, written_time_limit_minutes,
		    written_difficulty_distribution, yard_pass_mark_percentage, road_pass_mark_percentage,
		    requires_officer_assignment, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, TRUE)
		 ON CONFLICT (id) DO NOTHING`,
		multiConfigID, "Class B Full Licence Test", "Written, yard, and road stages for class B licences",
		categoryID, 20, 75, 30, distJSON, 70, 75)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed multi-stage configuration")
	}
	fmt.Println("Seeded test configurations")

	// ─── Evaluation criteria ──────────────────────────────────────────
	criteria := []struct {
		name     string
		stage    model.Stage
		maxScore int
		critical bool
	}{
		{"Reversing into a bay", model.StageYard, 10, false},
		{"Parallel parking", model.StageYard, 10, false},
		{"Hill start", model.StageYard, 10, true},
		{"Observation at junctions", model.StageRoad, 10, true},
		{"Lane discipline", model.StageRoad, 10, false},
		{"Speed management", model.StageRoad, 10, true},
		{"Use of mirrors and signals", model.StageRoad, 10, false},
	}
	for _, c := range criteria {
		_, err := pool.Exec(ctx,
			`INSERT INTO evaluation_criteria (id, name, stage, max_score, is_critical, is_active)
			 VALUES ($1, $2, $3, $4, $5, TRUE)
			 ON CONFLICT DO NOTHING`,
			uuid.New(), c.name, c.stage, c.maxScore, c.critical)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed criterion")
		}
	}
	fmt.Printf("Seeded %d evaluation criteria\n", len(criteria))

	// ─── Candidate with a verified appointment for today ──────────────
	candidateID := uuid.MustParse("7b0c8c64-4444-4b6e-9f3a-0de16a1b0001")
	candidateHash, err := authService.HashPassword("candidate123")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash candidate password")
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO candidates (id, email, full_name, trn, status, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING`,
		candidateID, "candidate.grant@dlexam.test", "J. Grant", "118-222-333",
		model.CandidateStatusApproved, candidateHash)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed candidate")
	}

	today := time.Now().UTC().Format("2006-01-02")
	for _, configID := range []uuid.UUID{singleConfigID, multiConfigID} {
		_, err = pool.Exec(ctx,
			`INSERT INTO appointments
			   (id, candidate_id, test_config_id, appointment_date, status, verification_status)
			 VALUES ($1, $2, $3, $4, 'confirmed', 'verified')
			 ON CONFLICT DO NOTHING`,
			uuid.New(), candidateID, configID, today)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed appointment")
		}
	}
	fmt.Println("Seeded candidate candidate.grant@dlexam.test (password: candidate123) with verified appointments for today")

	fmt.Println("Done.")
}

func seedUser(ctx context.Context, pool *pgxpool.Pool, email, name string, role model.Role, hash string) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name, role, password_hash, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, is_active = TRUE`,
		uuid.New(), email, name, role, hash)
	return err
}

// sampleQuestion builds one deterministic seed question. Every third hard
// question is true/false, and one medium question embeds a hazard video.
func sampleQuestion(categoryID uuid.UUID, difficulty model.Difficulty, n int) model.Question {
	id := uuid.New()
	q := model.Question{
		ID:           id,
		CategoryID:   categoryID,
		QuestionType: model.QuestionTypeMultipleChoice,
		QuestionText: fmt.Sprintf("[%s #%d] What does a solid white line along the centre of the road indicate?", difficulty, n+1),
		Difficulty:   difficulty,
		Status:       model.QuestionStatusApproved,
		Options: []model.QuestionOption{
			{Text: "Overtaking is permitted when safe"},
			{Text: "Crossing the line is prohibited", IsCorrect: true},
			{Text: "The road narrows ahead"},
			{Text: "Parking is not allowed"},
		},
	}

	if difficulty == model.DifficultyHard && n%3 == 0 {
		correct := n%2 == 0
		q.QuestionType = model.QuestionTypeTrueFalse
		q.QuestionText = fmt.Sprintf("[hard #%d] You must always stop at a stop sign even when the road is clear.", n+1)
		q.Options = nil
		q.CorrectAnswer = &correct
	}
	if difficulty == model.DifficultyMedium && n == 0 {
		q.QuestionType = model.QuestionTypeVideoEmbedded
		q.QuestionText = "Watch the hazard clip before continuing to the next question."
		q.Options = nil
		q.VideoURL = "https://media.dlexam.test/hazard-awareness-01.mp4"
	}

	return q
}
