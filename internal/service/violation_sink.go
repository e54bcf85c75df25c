package service

import (
	"context"

	"github.com/nirwairkumar/nkc-assess-backend/internal/session"
	"github.com/nirwairkumar/nkc-assess-backend/internal/store"
)

// QueueViolationSink bridges the engine's violation callback onto the
// Redis audit queue consumed by the violation worker.
type QueueViolationSink struct {
	queue *store.RedisViolationQueue
}

// NewQueueViolationSink creates a new QueueViolationSink.
func NewQueueViolationSink(queue *store.RedisViolationQueue) *QueueViolationSink {
	return &QueueViolationSink{queue: queue}
}

// Record queues one counted violation for batch persistence.
func (s *QueueViolationSink) Record(ctx context.Context, userID, testID string, v session.Violation, count int) error {
	return s.queue.Record(ctx, store.ViolationRecord{
		UserID:    userID,
		TestID:    testID,
		Kind:      string(v.Kind),
		Count:     count,
		Timestamp: v.At.Unix(),
	})
}
