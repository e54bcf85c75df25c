package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/store"
)

// PersistenceManager writes session snapshots to the durable tier and
// maintains the volatile liveness marker. Storage failures never halt a
// session: the first failure flips the manager into degraded in-memory
// operation for the remainder of the session, logged once.
//
// Methods are not safe for concurrent use; the owning controller
// serializes all access.
type PersistenceManager struct {
	snapshots store.SnapshotStore
	liveness  store.LivenessStore
	log       zerolog.Logger

	userID string
	testID string

	degraded bool
	fallback store.SnapshotStore
}

// NewPersistenceManager builds a manager bound to one (user, test) pair.
func NewPersistenceManager(snapshots store.SnapshotStore, liveness store.LivenessStore, userID, testID string, log zerolog.Logger) *PersistenceManager {
	return &PersistenceManager{
		snapshots: snapshots,
		liveness:  liveness,
		log:       log.With().Str("component", "persistence_manager").Logger(),
		userID:    userID,
		testID:    testID,
	}
}

// Load performs the resume check: it reads the durable snapshot and the
// liveness marker. Returns (nil, false, nil) when no snapshot exists.
// Read failures degrade rather than error; a broken store must not block
// a fresh start.
func (m *PersistenceManager) Load(ctx context.Context) (*model.Snapshot, bool, error) {
	data, err := m.tier().Read(ctx, m.userID, m.testID)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			return nil, false, nil
		}
		m.degrade(err)
		return nil, false, nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt snapshot is unrecoverable; treat it as absent.
		m.log.Warn().Err(err).Msg("Discarding corrupt snapshot")
		_ = m.tier().Delete(ctx, m.userID, m.testID)
		return nil, false, nil
	}

	alive := false
	if !m.degraded {
		alive, err = m.liveness.Alive(ctx, m.userID, m.testID)
		if err != nil {
			m.degrade(err)
		}
	}

	return &snap, alive, nil
}

// Save writes the snapshot with a fresh write timestamp. Called on every
// session mutation; the payload is small so there is no batching.
func (m *PersistenceManager) Save(ctx context.Context, snap *model.Snapshot) {
	snap.Timestamp = time.Now().Unix()

	data, err := json.Marshal(snap)
	if err != nil {
		m.log.Error().Err(err).Msg("Snapshot marshal failed")
		return
	}

	if err := m.tier().Write(ctx, m.userID, m.testID, data); err != nil {
		m.degrade(err)
		_ = m.tier().Write(ctx, m.userID, m.testID, data)
	}
}

// Heartbeat refreshes the volatile liveness marker.
func (m *PersistenceManager) Heartbeat(ctx context.Context) {
	if m.degraded {
		return
	}
	if err := m.liveness.Mark(ctx, m.userID, m.testID); err != nil {
		m.degrade(err)
	}
}

// Discard deletes both tiers for this session's key. Used when the
// candidate declines a resume and when a session finalizes.
func (m *PersistenceManager) Discard(ctx context.Context) {
	if err := m.tier().Delete(ctx, m.userID, m.testID); err != nil {
		m.degrade(err)
	}
	if !m.degraded {
		if err := m.liveness.Clear(ctx, m.userID, m.testID); err != nil {
			m.degrade(err)
		}
	}
}

// Degraded reports whether the manager has fallen back to in-memory
// operation.
func (m *PersistenceManager) Degraded() bool { return m.degraded }

func (m *PersistenceManager) tier() store.SnapshotStore {
	if m.degraded {
		return m.fallback
	}
	return m.snapshots
}

func (m *PersistenceManager) degrade(cause error) {
	if m.degraded {
		return
	}
	m.degraded = true
	m.fallback = store.NewMemorySnapshotStore()
	m.log.Warn().Err(fmt.Errorf("storage failure: %w", cause)).
		Str("user_id", m.userID).
		Str("test_id", m.testID).
		Msg("Persistence degraded to in-memory for the rest of this session")
}
