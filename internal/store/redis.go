package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nirwairkumar/nkc-assess-backend/internal/config"
)

// RedisSnapshotStore keeps durable snapshots in Redis under
// session:{userId}:{testId} and mirrors every write onto the archive
// queue, where a worker UPSERTs it into PostgreSQL.
type RedisSnapshotStore struct {
	rdb *redis.Client
}

func NewRedisSnapshotStore(rdb *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{rdb: rdb}
}

// archivePayload is what the snapshot archive worker consumes.
type archivePayload struct {
	UserID   string          `json:"user_id"`
	TestID   string          `json:"test_id"`
	Snapshot json.RawMessage `json:"snapshot"`
	SavedAt  int64           `json:"saved_at"`
}

func (s *RedisSnapshotStore) Read(ctx context.Context, userID, testID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.SessionSnapshotKey(userID, testID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func (s *RedisSnapshotStore) Write(ctx context.Context, userID, testID string, payload []byte) error {
	queued, _ := json.Marshal(archivePayload{
		UserID:   userID,
		TestID:   testID,
		Snapshot: payload,
		SavedAt:  time.Now().Unix(),
	})

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.SessionSnapshotKey(userID, testID), payload, 0)
	pipe.RPush(ctx, config.WorkerKey.ArchiveSnapshotsQueue, queued)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, userID, testID string) error {
	if err := s.rdb.Del(ctx, config.CacheKey.SessionSnapshotKey(userID, testID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// RedisLivenessStore implements the volatile tier as a TTL key refreshed
// by client heartbeats. A closed tab stops heartbeating and the marker
// expires; an ordinary reload is faster than the TTL and finds it alive.
type RedisLivenessStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLivenessStore(rdb *redis.Client, ttl time.Duration) *RedisLivenessStore {
	return &RedisLivenessStore{rdb: rdb, ttl: ttl}
}

func (s *RedisLivenessStore) Mark(ctx context.Context, userID, testID string) error {
	if err := s.rdb.Set(ctx, config.CacheKey.SessionLivenessKey(userID, testID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("mark liveness: %w", err)
	}
	return nil
}

func (s *RedisLivenessStore) Alive(ctx context.Context, userID, testID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.SessionLivenessKey(userID, testID)).Result()
	if err != nil {
		return false, fmt.Errorf("check liveness: %w", err)
	}
	return n > 0, nil
}

func (s *RedisLivenessStore) Clear(ctx context.Context, userID, testID string) error {
	if err := s.rdb.Del(ctx, config.CacheKey.SessionLivenessKey(userID, testID)).Err(); err != nil {
		return fmt.Errorf("clear liveness: %w", err)
	}
	return nil
}

// RedisViolationQueue pushes counted violations onto the audit queue
// consumed by the violation worker.
type RedisViolationQueue struct {
	rdb *redis.Client
}

func NewRedisViolationQueue(rdb *redis.Client) *RedisViolationQueue {
	return &RedisViolationQueue{rdb: rdb}
}

// ViolationRecord is the queue payload for one counted violation.
type ViolationRecord struct {
	UserID    string `json:"user_id"`
	TestID    string `json:"test_id"`
	Kind      string `json:"kind"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"timestamp"`
}

func (q *RedisViolationQueue) Record(ctx context.Context, rec ViolationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data).Err(); err != nil {
		return fmt.Errorf("queue violation: %w", err)
	}
	return nil
}
