package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/scheduler"
	"github.com/wonny/valuescreen/internal/scheduler/jobs"
	"github.com/wonny/valuescreen/internal/selection"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 작업 즉시 실행

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run fundamentus_screening`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- fundamentus_screening: SCREEN_SCHEDULE (기본 평일 19:30)
- run_retention: 매일 03:00 (DATABASE_URL 설정 시, RUN_RETENTION 이전 실행 삭제)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Value Screener Scheduler ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Println("Registered jobs:")
	printJobs(sched)

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.GetJobStats()

	// job history is per process; stored runs survive restarts
	if a.repo != nil {
		fmt.Println("Stored Runs:")
		PrintKeyValue("latest", describeLatestRun(cmd.Context(), a.repo), 10)
		fmt.Println()
	}

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// latestRunStore returns the most recent persisted run
type latestRunStore interface {
	LatestRun(ctx context.Context) (*contracts.ScreeningRun, error)
}

// describeLatestRun summarizes the last stored run in one line
func describeLatestRun(ctx context.Context, store latestRunStore) string {
	run, err := store.LatestRun(ctx)
	if errors.Is(err, selection.ErrNoRuns) {
		return "none"
	}
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}

	return fmt.Sprintf("%s at %s, %d passed, %d returned, %.2fs",
		run.ID,
		run.StartedAt.Format("2006-01-02 15:04:05"),
		run.Passed,
		run.Result.Len(),
		run.Duration.Seconds(),
	)
}

func printJobs(sched *scheduler.Scheduler) {
	for _, jobName := range sched.GetAllJobs() {
		next, err := sched.NextRun(jobName)
		if err != nil || next.IsZero() {
			fmt.Printf("  - %s\n", jobName)
			continue
		}
		fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
}

func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Wire dependencies (DB + SCREEN_OUTPUT sinks when configured)
	a, err := newApp(ctx, appOptions{UseDB: true, StoreDB: true, EnvOut: true})
	if err != nil {
		return nil, nil, err
	}

	// 2. Create scheduler
	sched := scheduler.New(a.log).WithRetry(2, time.Minute)

	// 3. Register jobs
	config := a.runConfig(a.defaultTop(), true)
	if err := sched.AddJob(jobs.NewScreeningJob(a.orchestrator, config, a.cfg.Screening.Schedule, a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}

	if a.repo != nil {
		if err := sched.AddJob(jobs.NewRetentionJob(a.repo, a.cfg.Screening.Retention, a.log)); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
