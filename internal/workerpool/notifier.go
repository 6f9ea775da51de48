package workerpool

import (
	"context"

	"algoprep/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProgressNotifier announces that a user's completion state changed so the
// cached roadmap progress gets recomputed.
type ProgressNotifier interface {
	Notify(ctx context.Context, userID string)
}

type streamNotifier struct {
	rdb    *redis.Client
	stream string
}

func NewProgressNotifier(rdb *redis.Client, stream string) ProgressNotifier {
	return &streamNotifier{rdb: rdb, stream: stream}
}

// Notify enqueues a recompute event. Losing one only delays a cache refresh;
// the read path falls back to the store, so failures are logged and swallowed.
func (n *streamNotifier) Notify(ctx context.Context, userID string) {
	err := n.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{"user_id": userID},
	}).Err()
	if err != nil {
		logger.Log.Warn("Failed to publish completion event",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
