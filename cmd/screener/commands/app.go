package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wonny/valuescreen/internal/brain"
	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/export"
	"github.com/wonny/valuescreen/internal/external/fundamentus"
	"github.com/wonny/valuescreen/internal/selection"
	"github.com/wonny/valuescreen/internal/strategyconfig"
	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/database"
	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
	"github.com/wonny/valuescreen/pkg/redis"
)

// appOptions selects which collaborators a command needs
type appOptions struct {
	Input   string // saved HTML page instead of the live source
	NoCache bool   // skip the Redis snapshot cache
	UseDB   bool   // open the database when DATABASE_URL is set
	SaveDB  bool   // persist runs to the database (requires DATABASE_URL)
	StoreDB bool   // persist runs when the database happens to be enabled
	OutPath string // file sink, empty disables
	EnvOut  bool   // fall back to SCREEN_OUTPUT when OutPath is empty
	Format  string // file sink format, derived from OutPath when empty
}

// app holds the wired dependencies shared by every command
// ⭐ SSOT: CLI 의존성 조립은 여기서만
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	redis        *redis.Client
	db           *database.DB
	repo         *selection.Repository // nil when the database is disabled
	outPath      string                // resolved file sink path
	strategy     *strategyconfig.Config
	strategyFrom string // file path, empty for built-in defaults
	hash         string
	filter       contracts.FilterSpec
	rank         contracts.RankSpec
	orchestrator *brain.Orchestrator
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	if env != "" {
		if err := os.Setenv("ENV", env); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// loadStrategy resolves --strategy, then STRATEGY_FILE, then the built-in defaults
func loadStrategy(cfg *config.Config, log *logger.Logger) (*strategyconfig.Config, string, error) {
	path := strategyFile
	if path == "" {
		path = cfg.Screening.StrategyFile
	}

	strategy, _, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}

	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, "", fmt.Errorf("strategy %s: %w", strategy.Meta.StrategyID, err)
	}

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy warning")
	}

	return strategy, path, nil
}

// newApp wires config, logger, Redis, source, database, sinks and the orchestrator
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	a.strategy, a.strategyFrom, err = loadStrategy(cfg, log)
	if err != nil {
		return nil, err
	}
	if a.hash, err = strategyconfig.Hash(a.strategy); err != nil {
		return nil, err
	}
	a.filter = a.strategy.FilterSpec()
	if a.rank, err = a.strategy.RankSpec(); err != nil {
		return nil, err
	}

	// Redis (snapshot cache + shared rate limit)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, err
	}

	// Source
	var source contracts.Source
	if opts.Input != "" {
		source = fundamentus.NewFileSource(opts.Input)
	} else {
		httpClient := httputil.New(cfg, log).
			WithRateLimiter(redis.NewRateLimiter(a.redis, "screener"), redis.FundamentusRateLimit)
		client := fundamentus.NewClient(httpClient, redis.NewCache(a.redis, "screener"), cfg.Fundamentus, log)
		if opts.NoCache {
			client = client.WithoutCache()
		}
		source = client
	}

	// Database (optional)
	if opts.UseDB || opts.SaveDB {
		a.db, err = database.New(ctx, cfg)
		switch {
		case errors.Is(err, database.ErrDisabled):
			if opts.SaveDB {
				a.Close()
				return nil, fmt.Errorf("--save-db requires DATABASE_URL")
			}
		case err != nil:
			a.Close()
			return nil, err
		default:
			a.repo = selection.NewRepository(a.db.Pool)
			if err := a.repo.EnsureSchema(ctx); err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	// Sinks
	if opts.OutPath == "" && opts.EnvOut {
		opts.OutPath = cfg.Screening.OutputPath
	}
	a.outPath = opts.OutPath

	var sinks []contracts.Sink
	if opts.OutPath != "" {
		format := opts.Format
		if format == "" {
			format = export.FormatFromPath(opts.OutPath)
		}
		sink, err := export.NewFileSink(opts.OutPath, format)
		if err != nil {
			a.Close()
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if (opts.SaveDB || opts.StoreDB) && a.repo != nil {
		sinks = append(sinks, a.repo)
	}

	a.orchestrator = brain.NewOrchestrator(source, log, sinks...)

	return a, nil
}

// runConfig builds a pipeline run from the loaded strategy
func (a *app) runConfig(top int, persist bool) brain.RunConfig {
	return brain.RunConfig{
		StrategyID:   a.strategy.Meta.StrategyID,
		StrategyHash: a.hash,
		Top:          top,
		Filter:       a.filter,
		Rank:         a.rank,
		Persist:      persist,
	}
}

// defaultTop is output.top of an explicit strategy file, otherwise SCREEN_TOP
func (a *app) defaultTop() int {
	if a.strategyFrom != "" {
		return a.strategy.Output.Top
	}
	return a.cfg.Screening.Top
}

// Close releases the database pool and Redis connection
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
