package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/wonny/valuescreen/internal/contracts"
)

// ErrNoRuns is returned by LatestRun on an empty history
var ErrNoRuns = errors.New("no screening run found")

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS screener;

	CREATE TABLE IF NOT EXISTS screener.runs (
		id            TEXT PRIMARY KEY,
		strategy_id   TEXT NOT NULL,
		strategy_hash TEXT NOT NULL,
		source        TEXT NOT NULL,
		fetched_at    TIMESTAMPTZ NOT NULL,
		started_at    TIMESTAMPTZ NOT NULL,
		duration_ms   BIGINT NOT NULL,
		source_rows   INT NOT NULL,
		normalized    INT NOT NULL,
		duplicates    TEXT[] NOT NULL DEFAULT '{}',
		passed        INT NOT NULL,
		rejections    JSONB NOT NULL,
		top_n         INT NOT NULL,
		total_ranked  INT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS screener.run_records (
		run_id            TEXT NOT NULL REFERENCES screener.runs(id) ON DELETE CASCADE,
		rank              INT NOT NULL,
		symbol            TEXT NOT NULL,
		price             NUMERIC NOT NULL,
		pe                NUMERIC NOT NULL,
		pb                NUMERIC NOT NULL,
		roic              NUMERIC NOT NULL,
		roe               NUMERIC NOT NULL,
		net_margin        NUMERIC NOT NULL,
		ebit_margin       NUMERIC NOT NULL,
		revenue_growth_5y NUMERIC NOT NULL,
		current_liquidity NUMERIC NOT NULL,
		liquidity_2m      NUMERIC NOT NULL,
		gross_debt_equity NUMERIC NOT NULL,
		PRIMARY KEY (run_id, rank)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON screener.runs (started_at DESC);
`

// Repository handles screening run persistence
// ⭐ SSOT: 실행 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new screening run repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Name implements contracts.Sink
func (r *Repository) Name() string {
	return "postgres"
}

// Save implements contracts.Sink
func (r *Repository) Save(ctx context.Context, run *contracts.ScreeningRun) error {
	return r.SaveRun(ctx, run)
}

// EnsureSchema creates the screener schema when absent
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun stores the run and its ranked records in one transaction
func (r *Repository) SaveRun(ctx context.Context, run *contracts.ScreeningRun) error {
	rejectionsJSON, err := json.Marshal(run.Rejections)
	if err != nil {
		return fmt.Errorf("failed to marshal rejections: %w", err)
	}

	duplicates := run.Duplicates
	if duplicates == nil {
		duplicates = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO screener.runs (
			id, strategy_id, strategy_hash, source, fetched_at, started_at, duration_ms,
			source_rows, normalized, duplicates, passed, rejections, top_n, total_ranked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		run.ID, run.StrategyID, run.StrategyHash, run.Source, run.FetchedAt, run.StartedAt,
		run.Duration.Milliseconds(), run.SourceRows, run.Normalized, duplicates,
		run.Passed, rejectionsJSON, run.Top, run.Result.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rr := range run.Result.Records {
		batch.Queue(`
			INSERT INTO screener.run_records (
				run_id, rank, symbol, price, pe, pb, roic, roe, net_margin, ebit_margin,
				revenue_growth_5y, current_liquidity, liquidity_2m, gross_debt_equity
			) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric,
				$9::numeric, $10::numeric, $11::numeric, $12::numeric, $13::numeric, $14::numeric)
		`,
			run.ID, rr.Rank, rr.Symbol,
			rr.Price.String(), rr.PE.String(), rr.PB.String(), rr.ROIC.String(), rr.ROE.String(),
			rr.NetMargin.String(), rr.EBITMargin.String(), rr.RevenueGrowth5Y.String(),
			rr.CurrentLiquidity.String(), rr.Liquidity2M.String(), rr.GrossDebtToEquity.String(),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert run records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LatestRun retrieves the most recent run with its records
func (r *Repository) LatestRun(ctx context.Context) (*contracts.ScreeningRun, error) {
	query := `
		SELECT id, strategy_id, strategy_hash, source, fetched_at, started_at, duration_ms,
			source_rows, normalized, duplicates, passed, rejections, top_n, total_ranked
		FROM screener.runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run contracts.ScreeningRun
	var durationMs int64
	var rejectionsJSON []byte

	err := r.pool.QueryRow(ctx, query).Scan(
		&run.ID, &run.StrategyID, &run.StrategyHash, &run.Source, &run.FetchedAt, &run.StartedAt,
		&durationMs, &run.SourceRows, &run.Normalized, &run.Duplicates, &run.Passed,
		&rejectionsJSON, &run.Top, &run.Result.Total,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.Duration = msToDuration(durationMs)

	if err := json.Unmarshal(rejectionsJSON, &run.Rejections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rejections: %w", err)
	}

	records, err := r.runRecords(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Result.Records = records

	return &run, nil
}

func (r *Repository) runRecords(ctx context.Context, runID string) ([]contracts.RankedRecord, error) {
	query := `
		SELECT rank, symbol, price::text, pe::text, pb::text, roic::text, roe::text,
			net_margin::text, ebit_margin::text, revenue_growth_5y::text,
			current_liquidity::text, liquidity_2m::text, gross_debt_equity::text
		FROM screener.run_records
		WHERE run_id = $1
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.RankedRecord, 0)
	fields := contracts.Fields()

	for rows.Next() {
		var rr contracts.RankedRecord
		raw := make([]string, len(fields))
		dest := []interface{}{&rr.Rank, &rr.Symbol}
		for i := range raw {
			dest = append(dest, &raw[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		values := make(map[contracts.Field]decimal.Decimal, len(fields))
		for i, f := range fields {
			d, err := decimal.NewFromString(raw[i])
			if err != nil {
				return nil, fmt.Errorf("failed to decode %s of %s: %w", f, rr.Symbol, err)
			}
			values[f] = d
		}
		rr.Record = contracts.NewRecord(rr.Symbol, values)

		results = append(results, rr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// PruneRuns deletes runs started before the cutoff; records cascade
func (r *Repository) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM screener.runs WHERE started_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
