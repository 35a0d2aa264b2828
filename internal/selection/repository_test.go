package selection

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuescreen/internal/contracts"
)

func TestRepository_SaveAndLatest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	run := &contracts.ScreeningRun{
		ID:           "test-" + now.Format("20060102150405.000"),
		StrategyID:   "fundamentus_default",
		StrategyHash: "abc",
		Source:       "test",
		FetchedAt:    now,
		StartedAt:    now,
		Duration:     1500 * time.Millisecond,
		SourceRows:   3,
		Normalized:   3,
		Passed:       2,
		Rejections:   map[string]int{"pb": 1},
		Top:          15,
		Result:       contracts.NewResultSet([]contracts.Record{recordA(), recordB()}, 15),
	}
	require.NoError(t, repo.Save(ctx, run))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Duration, got.Duration)
	assert.Equal(t, run.Rejections, got.Rejections)
	require.Len(t, got.Result.Records, 2)
	assert.Equal(t, "AAAA3", got.Result.Records[0].Symbol)
	assert.True(t, d("0.5").Equal(got.Result.Records[0].PB))

	_, err = pool.Exec(ctx, "DELETE FROM screener.runs WHERE id = $1", run.ID)
	require.NoError(t, err)
}

func TestRepository_Name(t *testing.T) {
	assert.Equal(t, "postgres", NewRepository(nil).Name())
}
