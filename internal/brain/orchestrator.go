package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/selection"
	"github.com/wonny/valuescreen/pkg/logger"
)

// Stage names recorded in RunResult.CompletedStages
const (
	StageAcquire   = "acquire"
	StageNormalize = "normalize"
	StageFilter    = "filter"
	StageRank      = "rank"
	StageTruncate  = "truncate"
	StagePersist   = "persist"
)

// Orchestrator coordinates acquire → normalize → filter → rank → truncate → persist
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	source     contracts.Source
	normalizer *selection.Normalizer
	sinks      []contracts.Sink
	logger     *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID        string // generated when empty
	StrategyID   string
	StrategyHash string
	Top          int // <= 0: no truncation
	Filter       contracts.FilterSpec
	Rank         contracts.RankSpec
	Persist      bool // hand the run to every sink
}

// DefaultRunConfig returns the built-in screen with N = 15
func DefaultRunConfig() RunConfig {
	return RunConfig{
		StrategyID: "fundamentus_default",
		Top:        15,
		Filter:     contracts.DefaultFilterSpec(),
		Rank:       contracts.DefaultRankSpec(),
	}
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []string
	Table           *contracts.RawTable
	Normalize       selection.NormalizeReport
	Screen          selection.ScreenReport
	Ranked          int
	Result          contracts.ResultSet
	Run             *contracts.ScreeningRun
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator; sinks are optional
func NewOrchestrator(source contracts.Source, logger *logger.Logger, sinks ...contracts.Sink) *Orchestrator {
	return &Orchestrator{
		source:     source,
		normalizer: selection.NewNormalizer(logger),
		sinks:      sinks,
		logger:     logger,
	}
}

// Run executes the pipeline once.
// Normalization errors (locale.ParseError, selection.SchemaError) are returned unwrapped.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}

	result := &RunResult{
		RunID:           config.RunID,
		CompletedStages: make([]string, 0, 6),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"strategy": config.StrategyID,
		"top":      config.Top,
		"persist":  config.Persist,
	}).Info("Starting screening run")

	// Acquire
	table, err := o.source.Fetch(ctx)
	if err != nil {
		result.Error = fmt.Errorf("acquire failed: %w", err)
		return result, result.Error
	}
	result.Table = table
	result.CompletedStages = append(result.CompletedStages, StageAcquire)

	// Normalize
	records, report, err := o.normalizer.Normalize(ctx, table)
	result.Normalize = report
	if err != nil {
		result.Error = err
		return result, err
	}
	result.CompletedStages = append(result.CompletedStages, StageNormalize)

	// Filter
	passed, screen := selection.NewScreener(config.Filter, o.logger).Screen(ctx, records)
	result.Screen = screen
	result.CompletedStages = append(result.CompletedStages, StageFilter)

	// Rank
	ranked, err := selection.NewRanker(config.Rank, o.logger).Rank(ctx, passed)
	if err != nil {
		result.Error = fmt.Errorf("rank failed: %w", err)
		return result, result.Error
	}
	result.Ranked = len(ranked)
	result.CompletedStages = append(result.CompletedStages, StageRank)

	// Truncate (boundary only)
	result.Result = contracts.NewResultSet(ranked, config.Top)
	result.CompletedStages = append(result.CompletedStages, StageTruncate)

	result.Run = &contracts.ScreeningRun{
		ID:           config.RunID,
		StrategyID:   config.StrategyID,
		StrategyHash: config.StrategyHash,
		Source:       table.Source,
		FetchedAt:    table.FetchedAt,
		StartedAt:    startTime,
		SourceRows:   report.Rows,
		Normalized:   report.Records,
		Duplicates:   report.Duplicates,
		Passed:       screen.Passed,
		Rejections:   screen.Rejected,
		Top:          config.Top,
		Result:       result.Result,
	}

	// Persist (optional)
	if config.Persist && len(o.sinks) > 0 {
		result.Run.Duration = time.Since(startTime)
		if err := o.persist(ctx, result.Run); err != nil {
			result.Error = fmt.Errorf("persist failed: %w", err)
			return result, result.Error
		}
		result.CompletedStages = append(result.CompletedStages, StagePersist)
	}

	result.Success = true
	result.Duration = time.Since(startTime)
	result.Run.Duration = result.Duration

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"rows":     report.Rows,
		"passed":   screen.Passed,
		"returned": result.Result.Len(),
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
	}).Info("Screening run completed successfully")

	return result, nil
}

// persist hands the run to every sink, stopping at the first failure
func (o *Orchestrator) persist(ctx context.Context, run *contracts.ScreeningRun) error {
	for _, sink := range o.sinks {
		if err := sink.Save(ctx, run); err != nil {
			return fmt.Errorf("%s: %w", sink.Name(), err)
		}

		o.logger.WithFields(map[string]interface{}{
			"sink":    sink.Name(),
			"records": run.Result.Len(),
		}).Info("Run persisted")
	}
	return nil
}
