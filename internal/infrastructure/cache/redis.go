package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/publish"
)

// JobStatusCache debounces publish-job poll loops through Redis. Returns
// nil (and the monitor runs cache-less) when no Redis address is set.
type JobStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewJobStatusCache(cfg *config.Config, log zerolog.Logger) *JobStatusCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &JobStatusCache{
		client: client,
		ttl:    cfg.JobCacheTTL,
		log:    log.With().Str("component", "job-status-cache").Logger(),
	}
}

func jobKey(jobID int64) string {
	return fmt.Sprintf("auction-media:job-status:%d", jobID)
}

// GetStatus returns the cached status for a job, if present.
func (c *JobStatusCache) GetStatus(ctx context.Context, jobID int64) (publish.Status, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, jobKey(jobID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Int64("job_id", jobID).Msg("cache read failed")
		}
		return "", false
	}
	return publish.Status(val), true
}

// SetStatus caches a job's status for the configured TTL. Failures are
// logged and swallowed; the cache is best-effort.
func (c *JobStatusCache) SetStatus(ctx context.Context, jobID int64, status publish.Status) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, jobKey(jobID), string(status), c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int64("job_id", jobID).Msg("cache write failed")
	}
}

// Close releases the Redis connection.
func (c *JobStatusCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
