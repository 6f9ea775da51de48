package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"algoprep/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bucket separates read traffic from mutating traffic; each gets its own
// per-key window.
type Bucket string

const (
	ReadBucket  Bucket = "read"
	WriteBucket Bucket = "write"
)

// Limiter admits or throttles a request for a key within a bucket. Counters
// are best effort, not a security boundary; a multi-instance deployment can
// swap in the redis implementation to share them.
type Limiter interface {
	Allow(ctx context.Context, key string, bucket Bucket) (bool, time.Duration, error)
}

type limitRecord struct {
	count       int
	windowStart time.Time
	mu          sync.Mutex
}

type MemoryLimiter struct {
	readLimit  int
	writeLimit int
	window     time.Duration

	records map[string]*limitRecord
	mu      sync.RWMutex
}

func NewMemoryLimiter(readLimit, writeLimit int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		readLimit:  readLimit,
		writeLimit: writeLimit,
		window:     window,
		records:    make(map[string]*limitRecord),
	}
	go l.startCleanup()
	return l
}

func (l *MemoryLimiter) limitFor(bucket Bucket) int {
	if bucket == WriteBucket {
		return l.writeLimit
	}
	return l.readLimit
}

func (l *MemoryLimiter) getOrCreateRecord(key string) *limitRecord {
	l.mu.RLock()
	record, exists := l.records[key]
	l.mu.RUnlock()
	if exists {
		return record
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if record, exists := l.records[key]; exists {
		return record
	}
	record = &limitRecord{windowStart: time.Now()}
	l.records[key] = record
	return record
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string, bucket Bucket) (bool, time.Duration, error) {
	record := l.getOrCreateRecord(bucket.key(key))

	record.mu.Lock()
	defer record.mu.Unlock()

	now := time.Now()
	if now.Sub(record.windowStart) >= l.window {
		record.count = 1
		record.windowStart = now
		return true, 0, nil
	}

	if record.count >= l.limitFor(bucket) {
		return false, l.window - now.Sub(record.windowStart), nil
	}

	record.count++
	return true, 0, nil
}

func (l *MemoryLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.cleanupStale()
	}
}

func (l *MemoryLimiter) cleanupStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-2 * l.window)
	for key, record := range l.records {
		record.mu.Lock()
		if record.windowStart.Before(cutoff) {
			delete(l.records, key)
		}
		record.mu.Unlock()
	}
}

func (b Bucket) key(key string) string {
	return string(b) + ":" + key
}

// RedisLimiter keeps the window counters in redis so every instance sees the
// same counts.
type RedisLimiter struct {
	client     *redis.Client
	readLimit  int
	writeLimit int
	window     time.Duration
}

func NewRedisLimiter(client *redis.Client, readLimit, writeLimit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:     client,
		readLimit:  readLimit,
		writeLimit: writeLimit,
		window:     window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, bucket Bucket) (bool, time.Duration, error) {
	limit := l.readLimit
	if bucket == WriteBucket {
		limit = l.writeLimit
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s", bucket, key)
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(limit) {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

// RateLimit throttles by verified user id when present, otherwise by client
// address. Limiter failures admit the request; throttling is a guard, not
// an auth check.
func RateLimit(limiter Limiter, bucket Bucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := UserIDFromContext(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key, bucket)
		if err != nil {
			logger.Log.Warn("Rate limiter unavailable, admitting request",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
