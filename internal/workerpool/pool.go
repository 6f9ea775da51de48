package workerpool

import (
	"context"
	"fmt"

	"algoprep/internal/logger"
	"algoprep/internal/repositories"
	"algoprep/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ProgressWorkerPool struct {
	workers        []*ProgressWorker
	numWorkers     int
	rdb            *redis.Client
	stream         string
	group          string
	completionRepo repositories.CompletionRepository
	cache          services.Cache
}

func NewProgressWorkerPool(numWorkers int, rdb *redis.Client, stream, group string,
	completionRepo repositories.CompletionRepository, cache services.Cache) *ProgressWorkerPool {
	return &ProgressWorkerPool{
		workers:        make([]*ProgressWorker, numWorkers),
		numWorkers:     numWorkers,
		rdb:            rdb,
		stream:         stream,
		group:          group,
		completionRepo: completionRepo,
		cache:          cache,
	}
}

func (p *ProgressWorkerPool) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	_, err := p.rdb.XGroupCreateMkStream(ctx, p.stream, p.group, "$").Result()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for i := 0; i < p.numWorkers; i++ {
		worker := NewProgressWorker(
			fmt.Sprintf("ProgressWorker-%d", i+1),
			p.rdb,
			p.stream,
			p.group,
			p.completionRepo,
			p.cache,
		)

		worker.Start(ctx)
		p.workers[i] = worker
	}

	logger.Log.Info("Progress worker pool started",
		zap.Int("num_workers", p.numWorkers))

	return nil
}

func (p *ProgressWorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
}
