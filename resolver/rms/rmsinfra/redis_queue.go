package rmsinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/rms/pkg/kernel"
	"github.com/Abraxas-365/rms/resolver/rms"
	"github.com/redis/go-redis/v9"
)

// RedisQueue backs the parse-job queue with a Redis list plus a sorted
// set for delayed retries. Payloads travel as JSON.
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

// NewRedisQueue creates a parse-job queue on the given list name
func NewRedisQueue(client *redis.Client, queueName string) rms.JobQueue {
	return &RedisQueue{
		client:    client,
		queueName: queueName,
	}
}

func (q *RedisQueue) delayedName() string {
	return q.queueName + ":delayed"
}

// Enqueue pushes a job payload onto the ready queue
func (q *RedisQueue) Enqueue(ctx context.Context, jobID kernel.JobID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for job %s: %w", jobID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", jobID, err)
	}

	return nil
}

// Dequeue blocks up to timeout for the next job payload. A nil payload
// with a nil error means the timeout elapsed with nothing queued.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}

	// BRPop returns [key, value]
	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}

	return []byte(result[1]), nil
}

// EnqueueDelayed schedules a payload for retry after delay. The ready
// time rides the zset score as a unix timestamp.
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, jobID kernel.JobID, payload any, delay time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal delayed payload for job %s: %w", jobID, err)
	}

	if err := q.client.ZAdd(ctx, q.delayedName(), redis.Z{
		Score:  float64(time.Now().Add(delay).Unix()),
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed job %s: %w", jobID, err)
	}

	return nil
}

// MoveDelayedToReady promotes every due delayed job onto the ready
// queue and reports how many moved.
func (q *RedisQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	due, err := q.client.ZRangeByScore(ctx, q.delayedName(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", float64(time.Now().Unix())),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed jobs: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, payload := range due {
		pipe.LPush(ctx, q.queueName, payload)
		pipe.ZRem(ctx, q.delayedName(), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("move delayed jobs to ready: %w", err)
	}

	return len(due), nil
}

// GetQueueSize returns the number of ready jobs
func (q *RedisQueue) GetQueueSize(ctx context.Context) (int64, error) {
	size, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("get queue size: %w", err)
	}
	return size, nil
}

// GetDelayedQueueSize returns the number of scheduled retries
func (q *RedisQueue) GetDelayedQueueSize(ctx context.Context) (int64, error) {
	size, err := q.client.ZCard(ctx, q.delayedName()).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed queue size: %w", err)
	}
	return size, nil
}

// Clear drops both queues. Maintenance use only.
func (q *RedisQueue) Clear(ctx context.Context) error {
	pipe := q.client.Pipeline()
	pipe.Del(ctx, q.queueName)
	pipe.Del(ctx, q.delayedName())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}

	return nil
}
