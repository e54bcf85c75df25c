package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/config"
	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/session"
	"github.com/nirwairkumar/nkc-assess-backend/internal/store"
)

// Domain errors for session start-gating.
var (
	ErrTestNotOpen         = errors.New("test is not open yet")
	ErrTestClosed          = errors.New("test window has closed")
	ErrAttemptLimitReached = errors.New("attempt limit reached for this test")
	ErrNoSession           = errors.New("no live session for this test")
)

// definitionCacheTTL bounds how stale a cached test definition can get.
const definitionCacheTTL = 5 * time.Minute

// TestLoader is the external Test Repository as seen by this service.
type TestLoader interface {
	Load(ctx context.Context, id uuid.UUID) (*model.TestDefinition, error)
}

// AttemptStore extends the engine's saver with the reads gating needs.
type AttemptStore interface {
	session.AttemptSaver
	CountByUser(ctx context.Context, testID uuid.UUID, userID string) (int, error)
}

// SessionView is everything a client needs after opening a session.
type SessionView struct {
	Prompt model.ResumePrompt    `json:"prompt"`
	State  model.SessionState    `json:"state"`
	Paper  *model.CandidatePaper `json:"paper"`
}

// SessionService gates session starts and keeps the registry of live
// controllers, one per (user, test).
type SessionService struct {
	tests      TestLoader
	attempts   AttemptStore
	snapshots  store.SnapshotStore
	liveness   store.LivenessStore
	violations session.ViolationSink
	rdb        *redis.Client
	log        zerolog.Logger

	mu   sync.Mutex
	live map[string]*liveSession
}

type liveSession struct {
	ctrl   *session.Controller
	prompt model.ResumePrompt
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	tests TestLoader,
	attempts AttemptStore,
	snapshots store.SnapshotStore,
	liveness store.LivenessStore,
	violations session.ViolationSink,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		tests:      tests,
		attempts:   attempts,
		snapshots:  snapshots,
		liveness:   liveness,
		violations: violations,
		rdb:        rdb,
		log:        log.With().Str("component", "session_service").Logger(),
		live:       make(map[string]*liveSession),
	}
}

// Open passes the start gates and returns the candidate's session,
// creating the controller if none is live. Reopening an existing live
// session (same tab reconnecting) returns it unchanged.
func (s *SessionService) Open(ctx context.Context, testID uuid.UUID, userID string, fields []model.FormField) (*SessionView, error) {
	key := sessionKey(userID, testID)

	s.mu.Lock()
	if ls, ok := s.live[key]; ok && !ls.ctrl.Status().Final() {
		s.mu.Unlock()
		return s.view(ls), nil
	}
	s.mu.Unlock()

	def, err := s.loadDefinition(ctx, testID)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, def, userID); err != nil {
		return nil, err
	}

	if def.Policy.ShuffleQuestions {
		def = shuffled(def, userID)
	}

	ctrl := session.New(session.Config{
		Test:        def,
		UserID:      userID,
		Persistence: session.NewPersistenceManager(s.snapshots, s.liveness, userID, testID.String(), s.log),
		Attempts:    s.attempts,
		Violations:  s.violations,
		Logger:      s.log,
	})
	if len(fields) > 0 {
		ctrl.SetFormFields(fields)
	}

	prompt, err := ctrl.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	ls := &liveSession{ctrl: ctrl, prompt: prompt}

	s.mu.Lock()
	// Two requests can race past the registry check; last one wins, the
	// loser's controller is aborted. Cross-tab concurrency is explicitly
	// unsupported, so last-write-wins is acceptable here.
	if prev, ok := s.live[key]; ok && !prev.ctrl.Status().Final() && prev.ctrl != ctrl {
		prev.ctrl.Abort()
	}
	s.live[key] = ls
	s.mu.Unlock()

	return s.view(ls), nil
}

// Resume answers the resume prompt for a pending session.
func (s *SessionService) Resume(ctx context.Context, testID uuid.UUID, userID string, accept bool) (*SessionView, error) {
	ls, err := s.lookup(testID, userID)
	if err != nil {
		return nil, err
	}
	if err := ls.ctrl.Resume(ctx, accept); err != nil {
		return nil, err
	}
	ls.prompt = model.ResumePrompt{}
	return s.view(ls), nil
}

// Controller returns the live controller for a (user, test) pair.
func (s *SessionService) Controller(testID uuid.UUID, userID string) (*session.Controller, error) {
	ls, err := s.lookup(testID, userID)
	if err != nil {
		return nil, err
	}
	return ls.ctrl, nil
}

// Release drops a finalized session from the registry.
func (s *SessionService) Release(testID uuid.UUID, userID string) {
	key := sessionKey(userID, testID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.live[key]; ok && ls.ctrl.Status().Final() {
		delete(s.live, key)
	}
}

// Shutdown aborts every live session. Durable snapshots survive, so
// candidates resume after a restart.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ls := range s.live {
		ls.ctrl.Abort()
		delete(s.live, key)
	}
}

func (s *SessionService) lookup(testID uuid.UUID, userID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.live[sessionKey(userID, testID)]
	if !ok {
		return nil, ErrNoSession
	}
	return ls, nil
}

func (s *SessionService) view(ls *liveSession) *SessionView {
	return &SessionView{
		Prompt: ls.prompt,
		State:  ls.ctrl.State(),
		Paper:  ls.ctrl.Test().Paper(),
	}
}

// gate enforces the start conditions: schedule window open and attempt
// limit not exceeded.
func (s *SessionService) gate(ctx context.Context, def *model.TestDefinition, userID string) error {
	now := time.Now()
	if def.Policy.ScheduledStart != nil && now.Before(*def.Policy.ScheduledStart) {
		return ErrTestNotOpen
	}
	if def.Policy.ScheduledEnd != nil && now.After(*def.Policy.ScheduledEnd) {
		return ErrTestClosed
	}

	if limit := def.Policy.AttemptLimit; limit > 0 {
		count, err := s.attempts.CountByUser(ctx, def.ID, userID)
		if err != nil {
			return fmt.Errorf("count prior attempts: %w", err)
		}
		if count >= limit {
			return ErrAttemptLimitReached
		}
	}
	return nil
}

// loadDefinition reads through a short-lived Redis cache so a cohort
// starting the same test does not hammer the repository.
func (s *SessionService) loadDefinition(ctx context.Context, testID uuid.UUID) (*model.TestDefinition, error) {
	key := config.CacheKey.TestDefinitionKey(testID.String())

	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var def model.TestDefinition
			if err := json.Unmarshal(data, &def); err == nil {
				return &def, nil
			}
			// Corrupt cache entry: fall through to the repository.
			_ = s.rdb.Del(ctx, key).Err()
		}
	}

	def, err := s.tests.Load(ctx, testID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(def); err == nil {
			if err := s.rdb.Set(ctx, key, data, definitionCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Definition cache write failed")
			}
		}
	}
	return def, nil
}

// shuffled returns a copy of the definition with a per-candidate question
// order. The permutation is derived from (userID, testID) so the same
// candidate always sees the same order across reloads.
func shuffled(def *model.TestDefinition, userID string) *model.TestDefinition {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(def.ID.String()))

	out := *def
	out.Questions = make([]model.Question, len(def.Questions))
	copy(out.Questions, def.Questions)

	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(out.Questions), func(i, j int) {
		out.Questions[i], out.Questions[j] = out.Questions[j], out.Questions[i]
	})
	return &out
}

func sessionKey(userID string, testID uuid.UUID) string {
	return userID + ":" + testID.String()
}
