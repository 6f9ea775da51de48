package workerpool

import (
	"context"
	"time"

	"algoprep/internal/logger"
	"algoprep/internal/repositories"
	"algoprep/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const progressCacheTTL = time.Hour

// ProgressWorker consumes completion-change events and refreshes the cached
// roadmap progress for the affected user.
type ProgressWorker struct {
	id             string
	quit           chan bool
	rdb            *redis.Client
	stream         string
	group          string
	completionRepo repositories.CompletionRepository
	cache          services.Cache
}

func NewProgressWorker(id string, rdb *redis.Client, stream, group string,
	completionRepo repositories.CompletionRepository, cache services.Cache) *ProgressWorker {
	return &ProgressWorker{
		id:             id,
		quit:           make(chan bool),
		rdb:            rdb,
		stream:         stream,
		group:          group,
		completionRepo: completionRepo,
		cache:          cache,
	}
}

func (w *ProgressWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-w.quit:
				return
			default:
				entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    w.group,
					Consumer: w.id,
					Streams:  []string{w.stream, ">"},
					Count:    1,
					Block:    5 * time.Second,
				}).Result()

				if err != nil {
					if err != redis.Nil {
						logger.Log.Error("Redis operation failed",
							zap.String("worker_id", w.id),
							zap.Error(err))
					}
					continue
				}

				for _, stream := range entries {
					for _, msg := range stream.Messages {
						w.processEvent(ctx, msg)
					}
				}
			}
		}
	}()
}

func (w *ProgressWorker) Stop() {
	logger.Log.Info("Closing worker",
		zap.String("worker_id", w.id))
	w.quit <- true
	close(w.quit)
}

func (w *ProgressWorker) processEvent(ctx context.Context, msg redis.XMessage) {
	if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		logger.Log.Error("Failed to acknowledge event",
			zap.String("worker_id", w.id),
			zap.Error(err))
	}

	userID, ok := msg.Values["user_id"].(string)
	if !ok || userID == "" {
		logger.Log.Error("Invalid user id in completion event",
			zap.String("worker_id", w.id),
			zap.Any("values", msg.Values))
		return
	}

	progress, err := w.completionRepo.RoadmapProgress(ctx, userID)
	if err != nil {
		logger.Log.Error("Failed to recompute roadmap progress",
			zap.String("worker_id", w.id),
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	if err := w.cache.Set(ctx, ProgressCacheKey(userID), progress, progressCacheTTL); err != nil {
		logger.Log.Error("Failed to cache roadmap progress",
			zap.String("worker_id", w.id),
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	logger.Log.Info("Refreshed roadmap progress",
		zap.String("worker_id", w.id),
		zap.String("user_id", userID))
}

// ProgressCacheKey names the cached roadmap progress for a user.
func ProgressCacheKey(userID string) string {
	return "roadmap_progress:" + userID
}
