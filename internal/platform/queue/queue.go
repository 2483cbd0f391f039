package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const purgeQueueKey = "queue:developer_purge"

// PurgeJob schedules the hard delete of a soft-deleted developer.
type PurgeJob struct {
	DeveloperID string `json:"developer_id"`
	EnqueuedAt  int64  `json:"enqueued_at"`
}

// DelayedQueue is a redis sorted set scored by the job's run-at time.
// The worker pops members whose score has passed.
type DelayedQueue struct {
	client *redis.Client
}

func NewDelayedQueue(client *redis.Client) *DelayedQueue {
	return &DelayedQueue{client: client}
}

func (q *DelayedQueue) Enqueue(ctx context.Context, job PurgeJob, delay time.Duration) error {
	if job.EnqueuedAt == 0 {
		job.EnqueuedAt = time.Now().Unix()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	runAt := float64(time.Now().Add(delay).Unix())
	return q.client.ZAdd(ctx, purgeQueueKey, redis.Z{Score: runAt, Member: payload}).Err()
}

// Due removes and returns every job whose run-at time has passed. Removal
// happens before the caller processes the job, so two overlapping pollers
// never hand out the same job twice.
func (q *DelayedQueue) Due(ctx context.Context, now time.Time) ([]PurgeJob, error) {
	members, err := q.client.ZRangeByScore(ctx, purgeQueueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	removed := make([]interface{}, len(members))
	for i, m := range members {
		removed[i] = m
	}
	if err := q.client.ZRem(ctx, purgeQueueKey, removed...).Err(); err != nil {
		return nil, err
	}

	jobs := make([]PurgeJob, 0, len(members))
	for _, m := range members {
		var job PurgeJob
		if err := json.Unmarshal([]byte(m), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
