package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/store"
)

// brokenSnapshotStore fails every operation.
type brokenSnapshotStore struct{}

func (brokenSnapshotStore) Read(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("store down")
}
func (brokenSnapshotStore) Write(context.Context, string, string, []byte) error {
	return errors.New("store down")
}
func (brokenSnapshotStore) Delete(context.Context, string, string) error {
	return errors.New("store down")
}

func newManager(snapshots store.SnapshotStore, liveness store.LivenessStore) *PersistenceManager {
	return NewPersistenceManager(snapshots, liveness, "u1", "t1", zerolog.Nop())
}

func TestSnapshotWireContract(t *testing.T) {
	ctx := context.Background()
	snapshots := store.NewMemorySnapshotStore()
	m := newManager(snapshots, store.NewMemoryLivenessStore())

	m.Save(ctx, &model.Snapshot{
		Answers:              map[string]model.AnswerValue{"q1": model.SingleAnswer("a")},
		MarkedForReview:      []string{"q2"},
		Visited:              []int{0, 1},
		CurrentQuestionIndex: 1,
		TimeRemaining:        90,
	})

	raw, err := snapshots.Read(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	// Field names are the fixed wire contract read by existing clients.
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal wire form: %v", err)
	}
	for _, key := range []string{"answers", "markedForReview", "visited", "currentQuestionIndex", "timeRemaining", "timestamp"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("wire snapshot missing %q: %s", key, raw)
		}
	}

	snap, alive, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if alive {
		t.Error("alive = true, want false without heartbeat")
	}
	if snap.TimeRemaining != 90 || snap.CurrentQuestionIndex != 1 {
		t.Errorf("snapshot = %+v, want time 90 index 1", snap)
	}
	if snap.Timestamp == 0 {
		t.Error("Save did not stamp the snapshot")
	}
}

func TestLoadNoSnapshot(t *testing.T) {
	m := newManager(store.NewMemorySnapshotStore(), store.NewMemoryLivenessStore())
	snap, alive, err := m.Load(context.Background())
	if err != nil || snap != nil || alive {
		t.Errorf("Load on empty store = (%v, %v, %v), want (nil, false, nil)", snap, alive, err)
	}
}

func TestLoadDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := store.NewMemorySnapshotStore()
	if err := snapshots.Write(ctx, "u1", "t1", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	m := newManager(snapshots, store.NewMemoryLivenessStore())
	snap, _, err := m.Load(ctx)
	if err != nil || snap != nil {
		t.Fatalf("Load corrupt = (%v, %v), want (nil, nil)", snap, err)
	}

	if _, err := snapshots.Read(ctx, "u1", "t1"); !errors.Is(err, store.ErrNoSnapshot) {
		t.Error("corrupt snapshot was not deleted")
	}
}

func TestHeartbeatDrivesLiveness(t *testing.T) {
	ctx := context.Background()
	liveness := store.NewMemoryLivenessStore()
	m := newManager(store.NewMemorySnapshotStore(), liveness)

	m.Heartbeat(ctx)
	alive, err := liveness.Alive(ctx, "u1", "t1")
	if err != nil || !alive {
		t.Errorf("Alive = (%v, %v), want (true, nil)", alive, err)
	}

	m.Discard(ctx)
	alive, _ = liveness.Alive(ctx, "u1", "t1")
	if alive {
		t.Error("Discard did not clear the liveness marker")
	}
}

func TestDegradeKeepsSessionRunning(t *testing.T) {
	ctx := context.Background()
	m := newManager(brokenSnapshotStore{}, store.NewMemoryLivenessStore())

	snap := &model.Snapshot{TimeRemaining: 42}
	m.Save(ctx, snap)

	if !m.Degraded() {
		t.Fatal("manager did not degrade after write failure")
	}

	// The fallback tier keeps serving the session.
	got, _, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load after degrade: %v", err)
	}
	if got == nil || got.TimeRemaining != 42 {
		t.Errorf("snapshot = %+v, want time 42 from fallback tier", got)
	}

	// Heartbeats become no-ops in degraded mode, not panics.
	m.Heartbeat(ctx)
	m.Discard(ctx)
}
