package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type fakeSnapshotDB struct {
	sql   string
	args  []any
	calls int
	err   error
}

func (f *fakeSnapshotDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls++
	f.sql = sql
	f.args = args
	return pgconn.CommandTag{}, f.err
}

func archiveWorker(db *fakeSnapshotDB) *SnapshotWorker {
	return &SnapshotWorker{pool: db, log: zerolog.Nop()}
}

func TestPersistSnapshotBindsEpochSeconds(t *testing.T) {
	db := &fakeSnapshotDB{}
	w := archiveWorker(db)

	testID := uuid.New()
	payload := &snapshotPayload{
		UserID:   "cand-7",
		TestID:   testID.String(),
		Snapshot: json.RawMessage(`{"answers":{},"timeRemaining":541}`),
		SavedAt:  1756600000,
	}

	if err := w.persistSnapshot(context.Background(), payload); err != nil {
		t.Fatalf("persistSnapshot: %v", err)
	}
	if db.calls != 1 {
		t.Fatalf("exec calls = %d, want 1", db.calls)
	}
	if len(db.args) != 4 {
		t.Fatalf("bound %d args, want 4", len(db.args))
	}
	if got, ok := db.args[0].(uuid.UUID); !ok || got != testID {
		t.Fatalf("test_id arg = %v (%T), want %v", db.args[0], db.args[0], testID)
	}
	if got, ok := db.args[1].(string); !ok || got != "cand-7" {
		t.Fatalf("user_id arg = %v, want cand-7", db.args[1])
	}
	if got, ok := db.args[2].([]byte); !ok || string(got) != string(payload.Snapshot) {
		t.Fatalf("snapshot arg = %v (%T)", db.args[2], db.args[2])
	}
	// The saved_at column is BIGINT; the payload's epoch seconds must bind
	// as a plain int64, never as time.Time.
	if got, ok := db.args[3].(int64); !ok || got != 1756600000 {
		t.Fatalf("saved_at arg = %v (%T), want int64 1756600000", db.args[3], db.args[3])
	}
}

func TestPersistSnapshotRejectsBadTestID(t *testing.T) {
	db := &fakeSnapshotDB{}
	w := archiveWorker(db)

	payload := &snapshotPayload{
		UserID:   "cand-7",
		TestID:   "not-a-uuid",
		Snapshot: json.RawMessage(`{}`),
		SavedAt:  1,
	}

	if err := w.persistSnapshot(context.Background(), payload); err == nil {
		t.Fatal("expected error for malformed test ID")
	}
	if db.calls != 0 {
		t.Fatalf("exec calls = %d, want 0", db.calls)
	}
}

func TestPersistSnapshotPropagatesExecError(t *testing.T) {
	execErr := errors.New("connection refused")
	db := &fakeSnapshotDB{err: execErr}
	w := archiveWorker(db)

	payload := &snapshotPayload{
		UserID:   "cand-7",
		TestID:   uuid.New().String(),
		Snapshot: json.RawMessage(`{}`),
		SavedAt:  1,
	}

	if err := w.persistSnapshot(context.Background(), payload); !errors.Is(err, execErr) {
		t.Fatalf("err = %v, want %v", err, execErr)
	}
}
