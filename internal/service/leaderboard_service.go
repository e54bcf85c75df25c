package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/ranking"
)

// ErrResultsHidden is returned when a test keeps its results private.
var ErrResultsHidden = errors.New("results are not visible for this test")

// AttemptLister is the read side of the Attempt Repository.
type AttemptLister interface {
	List(ctx context.Context, testID uuid.UUID) ([]model.Attempt, error)
}

// LeaderboardService serves ranked views over stored attempts. It has no
// live dependency on any session controller.
type LeaderboardService struct {
	tests    TestLoader
	attempts AttemptLister
	log      zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(tests TestLoader, attempts AttemptLister, log zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		tests:    tests,
		attempts: attempts,
		log:      log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Attempts returns a test's attempts in chronological order, latest
// first.
func (s *LeaderboardService) Attempts(ctx context.Context, testID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attempts.List(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return ranking.Chronological(attempts), nil
}

// Leaderboard returns the merit ordering, honoring the test's
// result-visibility flag.
func (s *LeaderboardService) Leaderboard(ctx context.Context, testID uuid.UUID) ([]model.Attempt, error) {
	def, err := s.tests.Load(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}
	if !def.Policy.ResultVisible {
		return nil, ErrResultsHidden
	}

	attempts, err := s.attempts.List(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return ranking.Merit(attempts), nil
}
