package perf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/stokkas/stokkas/internal/jobs"
	"github.com/stokkas/stokkas/jobs"
)

type flakyPurger struct {
	calls   int
	failOn  map[int]bool
	removed int64
}

func (p *flakyPurger) PurgeExpiredSessions(context.Context, time.Time) (int64, error) {
	p.calls++
	if p.failOn[p.calls] {
		return 0, errors.New("timeout")
	}
	return p.removed, nil
}

type staticCleaner struct{ removed int64 }

func (c staticCleaner) Cleanup(context.Context, time.Duration) (int64, error) {
	return c.removed, nil
}

func TestHousekeepingJobReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)

	purger := &flakyPurger{failOn: map[int]bool{7: true, 19: true}, removed: 2}
	purge := jobs.NewSessionPurgeJob(purger, nil, metrics)
	for i := 0; i < 48; i++ {
		_ = purge.Handle(context.Background(), jobs.NewSessionsPurgeTask())
	}

	cleanup := jobs.NewIdempotencyCleanupJob(staticCleaner{removed: 5}, nil, metrics)
	task, err := jobs.NewIdempotencyCleanupTask(jobs.DefaultIdempotencyRetention)
	if err != nil {
		t.Fatalf("build cleanup task: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := cleanup.Handle(context.Background(), task); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
	}
	if err := cleanup.Handle(context.Background(), asynq.NewTask(jobs.TaskIdempotencyCleanup, nil)); err != nil {
		t.Fatalf("cleanup without payload failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "stokkas_jobs_total", map[string]string{"job": jobs.TaskSessionsPurge, "status": "success"})
	failure := metricValue(t, families, "stokkas_jobs_total", map[string]string{"job": jobs.TaskSessionsPurge, "status": "failure"})
	if success != 46 || failure != 2 {
		t.Fatalf("unexpected purge outcomes: success=%v failure=%v", success, failure)
	}
	if ratio := success / (success + failure); ratio < 0.9 {
		t.Fatalf("purge success ratio too low: %f", ratio)
	}
	if removed := metricValue(t, families, "stokkas_jobs_rows_removed_total", map[string]string{"job": jobs.TaskSessionsPurge}); removed != 92 {
		t.Fatalf("unexpected purged rows: %v", removed)
	}
	if removed := metricValue(t, families, "stokkas_jobs_rows_removed_total", map[string]string{"job": jobs.TaskIdempotencyCleanup}); removed != 15 {
		t.Fatalf("unexpected cleaned keys: %v", removed)
	}

	if mean := histogramMean(t, families, "stokkas_job_duration_seconds", map[string]string{"job": jobs.TaskIdempotencyCleanup}); mean > 0.5 {
		t.Fatalf("cleanup duration above budget: %f", mean)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) < len(labels) {
		return false
	}
	for key, want := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = lp.GetValue() == want
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
