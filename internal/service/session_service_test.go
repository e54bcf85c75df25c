package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/repository"
	"github.com/nirwairkumar/nkc-assess-backend/internal/session"
	"github.com/nirwairkumar/nkc-assess-backend/internal/store"
)

type fakeTestLoader struct {
	defs map[uuid.UUID]*model.TestDefinition
}

func (f *fakeTestLoader) Load(_ context.Context, id uuid.UUID) (*model.TestDefinition, error) {
	def, ok := f.defs[id]
	if !ok {
		return nil, repository.ErrTestNotFound
	}
	return def, nil
}

type fakeAttemptStore struct {
	attempts []*model.Attempt
	count    int
}

func (f *fakeAttemptStore) Save(_ context.Context, a *model.Attempt) error {
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeAttemptStore) CountByUser(context.Context, uuid.UUID, string) (int, error) {
	return f.count, nil
}

type nopSink struct{}

func (nopSink) Record(context.Context, string, string, session.Violation, int) error { return nil }

func serviceDefinition(policy model.TestPolicy) *model.TestDefinition {
	def := &model.TestDefinition{
		ID:              uuid.New(),
		Title:           "svc",
		DurationMinutes: 10,
		Policy:          policy,
	}
	for i := 0; i < 8; i++ {
		def.Questions = append(def.Questions, model.Question{
			ID:      uuid.New().String(),
			Type:    model.QuestionTypeSingle,
			Correct: model.CorrectAnswer{Key: "a"},
		})
	}
	return def
}

func newService(def *model.TestDefinition, attempts *fakeAttemptStore) *SessionService {
	return NewSessionService(
		&fakeTestLoader{defs: map[uuid.UUID]*model.TestDefinition{def.ID: def}},
		attempts,
		store.NewMemorySnapshotStore(),
		store.NewMemoryLivenessStore(),
		nopSink{},
		nil, // no Redis: definition cache bypassed
		zerolog.Nop(),
	)
}

func TestOpenStartsSession(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{})
	svc := newService(def, &fakeAttemptStore{})
	defer svc.Shutdown()

	view, err := svc.Open(context.Background(), def.ID, "u1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if view.State.Status != model.StatusActive {
		t.Errorf("status = %s, want active", view.State.Status)
	}
	if view.Paper == nil || len(view.Paper.Questions) != len(def.Questions) {
		t.Error("paper missing or truncated")
	}

	// Reopening while live returns the same session, not a reset one.
	if _, err := svc.Controller(def.ID, "u1"); err != nil {
		t.Fatalf("Controller: %v", err)
	}
	again, err := svc.Open(context.Background(), def.ID, "u1", nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.State.Status != model.StatusActive {
		t.Errorf("reopen status = %s, want active", again.State.Status)
	}
}

func TestOpenUnknownTest(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{})
	svc := newService(def, &fakeAttemptStore{})
	defer svc.Shutdown()

	if _, err := svc.Open(context.Background(), uuid.New(), "u1", nil); !errors.Is(err, repository.ErrTestNotFound) {
		t.Errorf("Open unknown = %v, want ErrTestNotFound", err)
	}
}

func TestOpenScheduleGate(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name   string
		policy model.TestPolicy
		want   error
	}{
		{"not open yet", model.TestPolicy{ScheduledStart: &future}, ErrTestNotOpen},
		{"already closed", model.TestPolicy{ScheduledEnd: &past}, ErrTestClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := serviceDefinition(tt.policy)
			svc := newService(def, &fakeAttemptStore{})
			defer svc.Shutdown()

			if _, err := svc.Open(context.Background(), def.ID, "u1", nil); !errors.Is(err, tt.want) {
				t.Errorf("Open = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenAttemptLimit(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{AttemptLimit: 2})
	svc := newService(def, &fakeAttemptStore{count: 2})
	defer svc.Shutdown()

	if _, err := svc.Open(context.Background(), def.ID, "u1", nil); !errors.Is(err, ErrAttemptLimitReached) {
		t.Errorf("Open = %v, want ErrAttemptLimitReached", err)
	}
}

func TestControllerWithoutSession(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{})
	svc := newService(def, &fakeAttemptStore{})

	if _, err := svc.Controller(def.ID, "nobody"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Controller = %v, want ErrNoSession", err)
	}
	if _, err := svc.Resume(context.Background(), def.ID, "nobody", true); !errors.Is(err, ErrNoSession) {
		t.Errorf("Resume = %v, want ErrNoSession", err)
	}
}

func TestShuffledDeterministicPerCandidate(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{ShuffleQuestions: true})

	a := shuffled(def, "alice")
	b := shuffled(def, "alice")
	for i := range a.Questions {
		if a.Questions[i].ID != b.Questions[i].ID {
			t.Fatal("same candidate got different orders across calls")
		}
	}

	// The original definition is untouched and the permutation is complete.
	seen := make(map[string]bool)
	for _, q := range a.Questions {
		seen[q.ID] = true
	}
	if len(seen) != len(def.Questions) {
		t.Error("shuffle dropped or duplicated questions")
	}
	for i, q := range def.Questions {
		if !seen[q.ID] {
			t.Errorf("question %d missing after shuffle", i)
		}
	}
}

func TestShuffledVariesAcrossCandidates(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{ShuffleQuestions: true})

	// With 8 questions, ten candidates all landing on the identical order
	// would mean the seed ignores the user id.
	base := shuffled(def, "user-0")
	varied := false
	for i := 1; i < 10; i++ {
		other := shuffled(def, "user-"+string(rune('0'+i)))
		for j := range base.Questions {
			if base.Questions[j].ID != other.Questions[j].ID {
				varied = true
				break
			}
		}
	}
	if !varied {
		t.Error("every candidate saw the same order; shuffle seed looks broken")
	}
}

func TestShutdownAbortsLiveSessions(t *testing.T) {
	def := serviceDefinition(model.TestPolicy{})
	svc := newService(def, &fakeAttemptStore{})

	if _, err := svc.Open(context.Background(), def.ID, "u1", nil); err != nil {
		t.Fatal(err)
	}
	ctrl, err := svc.Controller(def.ID, "u1")
	if err != nil {
		t.Fatal(err)
	}

	svc.Shutdown()
	if ctrl.Status() != model.StatusAborted {
		t.Errorf("status after shutdown = %s, want aborted", ctrl.Status())
	}
	if _, err := svc.Controller(def.ID, "u1"); !errors.Is(err, ErrNoSession) {
		t.Error("registry still holds the session after shutdown")
	}
}
