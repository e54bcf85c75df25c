package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nirwairkumar/nkc-assess-backend/internal/config"
	"github.com/nirwairkumar/nkc-assess-backend/internal/database"
	"github.com/nirwairkumar/nkc-assess-backend/internal/logger"
	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// Seeds one demo test covering every question type and a warn-then-submit
// integrity policy. Safe to run repeatedly; the test id is fixed.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Demo Test ===")

	testID := uuid.MustParse("6df1cf6e-0d3a-4f3e-9d87-1d1b7a2f9b11")

	policy := model.TestPolicy{
		IntegrityMode:     model.IntegrityWarnThenSubmit,
		MaxViolations:     2,
		RequireFullscreen: true,
		BlockCopyPaste:    true,
		BlockContextMenu:  true,
		ShuffleQuestions:  true,
		AttemptLimit:      1,
		PreTestForm:       []string{"Full Name", "Roll Number"},
		ResultVisible:     true,
	}
	policyJSON, err := json.Marshal(policy)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal policy")
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO tests (id, title, duration_minutes, marks_per_question, negative_marks, policy)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title,
		     duration_minutes = EXCLUDED.duration_minutes,
		     marks_per_question = EXCLUDED.marks_per_question,
		     negative_marks = EXCLUDED.negative_marks,
		     policy = EXCLUDED.policy`,
		testID, "General Aptitude Demo", 30, 4.0, 1.0, policyJSON,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert test")
	}

	type seedQuestion struct {
		qtype   model.QuestionType
		prompt  string
		options []model.Option
		correct string // raw JSON matching the answer-key format
	}

	questions := []seedQuestion{
		{
			qtype:  model.QuestionTypeSingle,
			prompt: "Which planet is closest to the sun?",
			options: []model.Option{
				{Key: "a", Text: "Venus"}, {Key: "b", Text: "Mercury"},
				{Key: "c", Text: "Mars"}, {Key: "d", Text: "Earth"},
			},
			correct: `"b"`,
		},
		{
			qtype:  model.QuestionTypeSingleAdvance,
			prompt: "2 + 2 * 2 equals?",
			options: []model.Option{
				{Key: "a", Text: "6"}, {Key: "b", Text: "8"},
				{Key: "c", Text: "4"}, {Key: "d", Text: "10"},
			},
			correct: `"a"`,
		},
		{
			qtype:  model.QuestionTypeMultiple,
			prompt: "Select all prime numbers.",
			options: []model.Option{
				{Key: "a", Text: "2"}, {Key: "b", Text: "4"},
				{Key: "c", Text: "5"}, {Key: "d", Text: "9"},
			},
			correct: `["a","c"]`,
		},
		{
			qtype:   model.QuestionTypeNumerical,
			prompt:  "The acceleration due to gravity on Earth in m/s^2 (one decimal place).",
			correct: `{"min":9.7,"max":9.9}`,
		},
		{
			qtype:   model.QuestionTypeNumerical,
			prompt:  "How many sides does a hexagon have?",
			correct: `6`,
		},
	}

	// Re-seed questions from scratch; the demo test owns them.
	if _, err := pool.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, testID); err != nil {
		log.Fatal().Err(err).Msg("Failed to clear old questions")
	}

	for i, q := range questions {
		optionsJSON, err := json.Marshal(q.options)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal options")
		}
		_, err = pool.Exec(ctx,
			`INSERT INTO questions (id, test_id, order_num, type, prompt, options, correct_answer)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), testID, i+1, q.qtype, q.prompt, optionsJSON, []byte(q.correct),
		)
		if err != nil {
			log.Fatal().Err(err).Int("order", i+1).Msg("Failed to insert question")
		}
	}

	fmt.Printf("Seed completed! Test %s with %d questions.\n", testID, len(questions))
}
