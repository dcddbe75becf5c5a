package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge deletes login session rows past their expiry.
	TaskSessionsPurge = "auth:sessions:purge"
	// TaskIdempotencyCleanup deletes idempotency keys past their retention.
	TaskIdempotencyCleanup = "idempotency:cleanup"

	// DefaultIdempotencyRetention is how long processed order keys are kept.
	DefaultIdempotencyRetention = 7 * 24 * time.Hour
)

// IdempotencyCleanupPayload carries the retention window in hours.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewSessionsPurgeTask constructs the session purge task.
func NewSessionsPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionsPurge, nil)
}

// NewIdempotencyCleanupTask constructs the cleanup task for the given retention.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: int(retention / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// DefaultSchedule returns the housekeeping cron entries: sessions hourly and
// idempotency keys daily at 02:00.
func DefaultSchedule() ([]CronRegistration, error) {
	cleanup, err := NewIdempotencyCleanupTask(DefaultIdempotencyRetention)
	if err != nil {
		return nil, err
	}
	return []CronRegistration{
		{Spec: "@hourly", Task: NewSessionsPurgeTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		{Spec: "0 2 * * *", Task: cleanup, Options: []asynq.Option{asynq.MaxRetry(3)}},
	}, nil
}
