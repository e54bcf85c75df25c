package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// AttemptRepository persists finalized attempts. Save is the call the
// session controller blocks on during submission.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Save inserts a finalized attempt.
func (r *AttemptRepository) Save(ctx context.Context, a *model.Attempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	fields, err := json.Marshal(a.FormFields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts (
			id, test_id, user_id, answers,
			score, positive_score, negative_score,
			correct_count, wrong_count, unattempted_count, total_questions,
			form_fields, reason, submitted_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		a.ID, a.TestID, a.UserID, answers,
		a.Result.Score, a.Result.PositiveScore, a.Result.NegativeScore,
		a.Result.CorrectCount, a.Result.WrongCount, a.Result.UnattemptedCount, a.Result.TotalQuestions,
		fields, a.Reason, a.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// List returns every attempt for a test, in submission order. Ordering
// for leaderboards is the ranking engine's job, not the query's.
func (r *AttemptRepository) List(ctx context.Context, testID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, answers,
		        score, positive_score, negative_score,
		        correct_count, wrong_count, unattempted_count, total_questions,
		        form_fields, reason, submitted_at
		 FROM attempts
		 WHERE test_id = $1
		 ORDER BY submitted_at`, testID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var answersRaw, fieldsRaw []byte
		if err := rows.Scan(
			&a.ID, &a.TestID, &a.UserID, &answersRaw,
			&a.Result.Score, &a.Result.PositiveScore, &a.Result.NegativeScore,
			&a.Result.CorrectCount, &a.Result.WrongCount, &a.Result.UnattemptedCount, &a.Result.TotalQuestions,
			&fieldsRaw, &a.Reason, &a.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if len(answersRaw) > 0 {
			if err := json.Unmarshal(answersRaw, &a.Answers); err != nil {
				return nil, fmt.Errorf("decode answers: %w", err)
			}
		}
		if len(fieldsRaw) > 0 {
			if err := json.Unmarshal(fieldsRaw, &a.FormFields); err != nil {
				return nil, fmt.Errorf("decode form fields: %w", err)
			}
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CountByUser returns how many attempts a user has submitted for a test.
// Backs the attempt-limit gate at session start.
func (r *AttemptRepository) CountByUser(ctx context.Context, testID uuid.UUID, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE test_id = $1 AND user_id = $2`,
		testID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}
