package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RenderJobsKey is the Redis list holding pending render jobs.
const RenderJobsKey = "render-jobs"

// RenderJob asks a worker to render a stored log into the given formats. Jobs
// always render with the log's own start date, the only date the render cache
// holds.
type RenderJob struct {
	JobID      string    `json:"job_id"`
	LogID      uuid.UUID `json:"log_id"`
	Formats    []string  `json:"formats"`
	Attempts   int       `json:"attempts,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewRenderJob creates a job with a fresh ID.
func NewRenderJob(logID uuid.UUID, formats []string) *RenderJob {
	return &RenderJob{
		JobID:      uuid.NewString(),
		LogID:      logID,
		Formats:    formats,
		EnqueuedAt: time.Now().UTC(),
	}
}

// RenderQueue is a FIFO of render jobs shared by every worker
type RenderQueue struct {
	client *Client
}

func NewRenderQueue(client *Client) *RenderQueue {
	return &RenderQueue{client: client}
}

// Enqueue adds a job to the end of the queue
func (q *RenderQueue) Enqueue(ctx context.Context, job *RenderJob) error {
	if job == nil {
		return errors.New("render job cannot be nil")
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal render job: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, RenderJobsKey, data).Err(); err != nil {
		q.client.logger.Error("Failed to enqueue render job", "job_id", job.JobID, "log_id", job.LogID, "error", err)
		return fmt.Errorf("failed to enqueue render job: %w", err)
	}
	q.client.logger.Debug("Render job enqueued", "job_id", job.JobID, "log_id", job.LogID)
	return nil
}

// BlockingDequeue waits up to timeout for a job. It returns a nil job when the
// wait times out or ctx ends first.
func (q *RenderQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*RenderJob, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, RenderJobsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue render job: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	var job RenderJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to parse render job: %w", err)
	}
	return &job, nil
}

// Depth returns the number of pending render jobs
func (q *RenderQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, RenderJobsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get render queue depth: %w", err)
	}
	return int(count), nil
}
