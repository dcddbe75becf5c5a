package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stokkas/stokkas/internal/jobs"
)

// SessionPurger deletes session rows that expired before the cutoff.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// KeyCleaner deletes idempotency keys older than the retention window.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SessionPurgeJob removes expired login sessions.
type SessionPurgeJob struct {
	Purger  SessionPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSessionPurgeJob initialises the purge handler.
func NewSessionPurgeJob(purger SessionPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionPurgeJob {
	return &SessionPurgeJob{
		Purger:  purger,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the purge.
func (j *SessionPurgeJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Purger == nil {
		return errors.New("sessions purge: handler not configured")
	}
	tracker := j.Metrics.Track(TaskSessionsPurge)
	removed, err := j.Purger.PurgeExpiredSessions(ctx, j.clock())
	if err != nil {
		loggerOrDefault(j.Logger).Error("purge sessions failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddRemoved(TaskSessionsPurge, removed)
	loggerOrDefault(j.Logger).Info("purged expired sessions", slog.Int64("removed", removed))
	return tracker.End(nil)
}

// IdempotencyCleanupJob removes stale idempotency keys.
type IdempotencyCleanupJob struct {
	Cleaner KeyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob initialises the cleanup handler.
func NewIdempotencyCleanupJob(cleaner KeyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Cleaner: cleaner, Logger: logger, Metrics: metrics}
}

// Handle executes the cleanup. A missing or zero retention uses the default.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cleaner == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	retention := DefaultIdempotencyRetention
	if len(t.Payload()) > 0 {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionHours > 0 {
			retention = time.Duration(payload.RetentionHours) * time.Hour
		}
	}
	tracker := j.Metrics.Track(TaskIdempotencyCleanup)
	removed, err := j.Cleaner.Cleanup(ctx, retention)
	if err != nil {
		loggerOrDefault(j.Logger).Error("idempotency cleanup failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddRemoved(TaskIdempotencyCleanup, removed)
	loggerOrDefault(j.Logger).Info("removed idempotency keys",
		slog.Int64("removed", removed),
		slog.Duration("retention", retention),
	)
	return tracker.End(nil)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
