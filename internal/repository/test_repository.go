package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// ErrTestNotFound is returned when no test exists for the given id.
var ErrTestNotFound = errors.New("test not found")

// TestRepository loads test definitions. Authoring and storage of tests
// happen elsewhere; the engine only ever reads.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// Load fetches a full test definition, questions in order.
func (r *TestRepository) Load(ctx context.Context, id uuid.UUID) (*model.TestDefinition, error) {
	def := &model.TestDefinition{}
	var policyRaw []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_minutes, marks_per_question, negative_marks, policy
		 FROM tests
		 WHERE id = $1`, id,
	).Scan(&def.ID, &def.Title, &def.DurationMinutes, &def.MarksPerQuestion, &def.NegativeMarks, &policyRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	if len(policyRaw) > 0 {
		if err := json.Unmarshal(policyRaw, &def.Policy); err != nil {
			return nil, fmt.Errorf("decode policy: %w", err)
		}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, type, prompt, COALESCE(image_url, ''), options, correct_answer
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY order_num`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		var optionsRaw, correctRaw []byte
		if err := rows.Scan(&q.ID, &q.Type, &q.Prompt, &q.ImageURL, &optionsRaw, &correctRaw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(optionsRaw) > 0 {
			if err := json.Unmarshal(optionsRaw, &q.Options); err != nil {
				return nil, fmt.Errorf("decode options: %w", err)
			}
		}
		if err := json.Unmarshal(correctRaw, &q.Correct); err != nil {
			return nil, fmt.Errorf("decode answer key: %w", err)
		}
		def.Questions = append(def.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	return def, nil
}
