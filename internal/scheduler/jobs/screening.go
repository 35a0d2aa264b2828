package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/valuescreen/internal/brain"
	"github.com/wonny/valuescreen/internal/locale"
	"github.com/wonny/valuescreen/internal/scheduler"
	"github.com/wonny/valuescreen/internal/selection"
	"github.com/wonny/valuescreen/pkg/logger"
)

// ScreeningJobName is the registered name of the screening job
const ScreeningJobName = "fundamentus_screening"

// Runner runs one screening pipeline
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// ScreeningJob runs the screening pipeline on a schedule
// ⭐ SSOT: 스크리닝 스케줄은 이 Job에서만
type ScreeningJob struct {
	runner   Runner
	config   brain.RunConfig
	schedule string
	logger   *logger.Logger
}

// NewScreeningJob creates a new screening job
func NewScreeningJob(runner Runner, config brain.RunConfig, schedule string, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		runner:   runner,
		config:   config,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return ScreeningJobName
}

// Schedule returns the cron schedule (weekdays after the B3 close by default)
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening run.
// Malformed source data and schema drift are permanent: retrying refetches the same page.
func (j *ScreeningJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled screening")

	// every scheduled run gets its own id
	config := j.config
	config.RunID = ""

	result, err := j.runner.Run(ctx, config)
	if err != nil {
		var pe *locale.ParseError
		var se *selection.SchemaError
		if errors.As(err, &pe) || errors.As(err, &se) {
			return scheduler.Permanent(err)
		}
		return fmt.Errorf("screening run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"passed":   result.Screen.Passed,
		"returned": result.Result.Len(),
	}).Info("Scheduled screening completed")

	return nil
}
