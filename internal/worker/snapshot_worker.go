package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/config"
)

// snapshotDB is the slice of pgxpool.Pool the archive writes need.
type snapshotDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SnapshotWorker consumes the archive queue and UPSERTs session snapshots
// into PostgreSQL. The Redis key remains the per-device tier the resume
// check reads; this archive exists so an interrupted session survives
// even a Redis loss.
type SnapshotWorker struct {
	pool snapshotDB
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewSnapshotWorker creates a new SnapshotWorker.
func NewSnapshotWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "snapshot_worker").Logger(),
	}
}

type snapshotPayload struct {
	UserID   string          `json:"user_id"`
	TestID   string          `json:"test_id"`
	Snapshot json.RawMessage `json:"snapshot"`
	SavedAt  int64           `json:"saved_at"`
}

// Start begins the worker loop. Call in a goroutine.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *SnapshotWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.ArchiveSnapshotsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload snapshotPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistSnapshot(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("user_id", payload.UserID).
			Str("test_id", payload.TestID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.ArchiveSnapshotsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *SnapshotWorker) persistSnapshot(ctx context.Context, p *snapshotPayload) error {
	testID, err := uuid.Parse(p.TestID)
	if err != nil {
		return err
	}

	// Newest write wins; out-of-order deliveries are dropped by saved_at.
	// saved_at is epoch seconds and binds as int64 to the BIGINT column.
	_, err = w.pool.Exec(ctx,
		`INSERT INTO session_snapshots (test_id, user_id, snapshot, saved_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (test_id, user_id) DO UPDATE
		 SET snapshot = EXCLUDED.snapshot, saved_at = EXCLUDED.saved_at
		 WHERE session_snapshots.saved_at <= EXCLUDED.saved_at`,
		testID, p.UserID, []byte(p.Snapshot), p.SavedAt,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *SnapshotWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.ArchiveSnapshotsQueue).Result()
		if err != nil {
			break
		}

		var payload snapshotPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistSnapshot(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.ArchiveSnapshotsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
