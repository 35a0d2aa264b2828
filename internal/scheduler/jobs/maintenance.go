package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/valuescreen/pkg/logger"
)

// RunPruner deletes stored runs older than a cutoff
type RunPruner interface {
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}

// RetentionJob removes old screening runs from storage
type RetentionJob struct {
	pruner    RunPruner
	retention time.Duration
	logger    *logger.Logger
}

// NewRetentionJob creates a new retention job
func NewRetentionJob(pruner RunPruner, retention time.Duration, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		pruner:    pruner,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "run_retention"
}

// Schedule returns the cron schedule (daily at 03:00)
func (j *RetentionJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run executes the cleanup
func (j *RetentionJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled run retention")

	cutoff := time.Now().Add(-j.retention)
	count, err := j.pruner.PruneRuns(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": count,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("Run retention completed")
	}

	return nil
}
