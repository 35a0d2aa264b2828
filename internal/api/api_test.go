package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuescreen/internal/api/handlers"
	"github.com/wonny/valuescreen/internal/brain"
	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/locale"
	"github.com/wonny/valuescreen/internal/selection"
	"github.com/wonny/valuescreen/internal/strategyconfig"
	"github.com/wonny/valuescreen/pkg/database"
	"github.com/wonny/valuescreen/pkg/logger"
)

type fakeRunner struct {
	err     error
	configs []brain.RunConfig
}

func (f *fakeRunner) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	f.configs = append(f.configs, config)
	if f.err != nil {
		return nil, f.err
	}

	ranked := []contracts.Record{
		{Symbol: "AAAA3", PE: decimal.NewFromInt(5)},
		{Symbol: "BBBB4", PE: decimal.NewFromInt(8)},
	}
	return &brain.RunResult{
		RunID:   "run-1",
		Success: true,
		Table:   &contracts.RawTable{Source: "fake"},
		Screen:  selection.ScreenReport{Input: 3, Passed: 2, Rejected: map[string]int{"pb": 1}},
		Result:  contracts.NewResultSet(ranked, config.Top),
	}, nil
}

type fakeStore struct {
	run *contracts.ScreeningRun
	err error
}

func (f *fakeStore) LatestRun(ctx context.Context) (*contracts.ScreeningRun, error) {
	return f.run, f.err
}

type fakeDB struct {
	err error
}

func (f *fakeDB) HealthCheck(ctx context.Context) (*database.HealthStatus, error) {
	if f.err != nil {
		return &database.HealthStatus{Error: f.err.Error()}, f.err
	}
	return &database.HealthStatus{Healthy: true, MaxConns: 10}, nil
}

func newTestRouter(t *testing.T, runner handlers.Runner, store handlers.RunStore) http.Handler {
	t.Helper()
	return newTestRouterWith(t, runner, store, nil, 15)
}

func newTestRouterWith(t *testing.T, runner handlers.Runner, store handlers.RunStore, db handlers.DBChecker, top int) http.Handler {
	t.Helper()

	strategy := strategyconfig.Default()
	screen, err := handlers.NewScreenHandler(runner, store, strategy, top, nil, 0, logger.Nop())
	require.NoError(t, err)

	return NewRouter(screen, handlers.NewStrategyHandler(strategy), handlers.NewHealthHandler(db), logger.Nop())
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(newTestRouter(t, &fakeRunner{}, nil), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotContains(t, rec.Body.String(), `"database"`)
}

func TestHealth_Database(t *testing.T) {
	tests := []struct {
		name       string
		db         *fakeDB
		wantCode   int
		wantStatus string
	}{
		{"reachable", &fakeDB{}, http.StatusOK, "ok"},
		{"unreachable", &fakeDB{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestRouterWith(t, &fakeRunner{}, nil, tt.db, 15), "/health")
			require.Equal(t, tt.wantCode, rec.Code)

			var body handlers.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			require.NotNil(t, body.Database)
			assert.Equal(t, tt.db.err == nil, body.Database.Healthy)
		})
	}
}

func TestScreen_JSON(t *testing.T) {
	runner := &fakeRunner{}
	rec := get(newTestRouter(t, runner, nil), "/api/screen?top=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body handlers.ScreenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, "fundamentus_default", body.StrategyID)
	assert.Len(t, body.StrategyHash, 64)
	assert.Equal(t, 1, body.Top)
	require.Len(t, body.Result.Records, 1)
	assert.Equal(t, "AAAA3", body.Result.Records[0].Symbol)
	assert.Equal(t, 2, body.Result.Total)

	require.Len(t, runner.configs, 1)
	assert.Equal(t, 1, runner.configs[0].Top)
	assert.Equal(t, contracts.DefaultRankSpec(), runner.configs[0].Rank)
	assert.True(t, runner.configs[0].Filter.MaxPB.Equal(decimal.NewFromInt(1)))
}

func TestScreen_DefaultTop(t *testing.T) {
	runner := &fakeRunner{}
	rec := get(newTestRouterWith(t, runner, nil, nil, 7), "/api/screen")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, runner.configs[0].Top)

	var body handlers.ScreenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Top)
}

func TestScreen_Decision(t *testing.T) {
	rec := get(newTestRouter(t, &fakeRunner{}, nil), "/api/screen")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.ScreenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Decision)
	assert.Equal(t, body.StrategyHash, body.Decision.ConfigHash)
	assert.Equal(t, "fundamentus_default", body.Decision.StrategyID)
	assert.Equal(t, "fake", body.Decision.DataSnapshotID)
	assert.Contains(t, body.Decision.ConfigYAML, "strategy_id: fundamentus_default")
}

func TestScreen_CSV(t *testing.T) {
	rec := get(newTestRouter(t, &fakeRunner{}, nil), "/api/screen?format=csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Body.String(), "Papel,Cotação")
	assert.Contains(t, rec.Body.String(), "AAAA3")
}

func TestScreen_BadRequest(t *testing.T) {
	router := newTestRouter(t, &fakeRunner{}, nil)

	assert.Equal(t, http.StatusBadRequest, get(router, "/api/screen?top=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/screen?format=xml").Code)
}

func TestScreen_RunErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"parse error", &locale.ParseError{Input: "x", Err: locale.ErrInvalidNumber}, http.StatusBadGateway},
		{"schema error", &selection.SchemaError{Missing: []string{"ROE"}}, http.StatusBadGateway},
		{"other", errors.New("acquire failed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestRouter(t, &fakeRunner{err: tt.err}, nil), "/api/screen")
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestLatest(t *testing.T) {
	t.Run("persistence disabled", func(t *testing.T) {
		rec := get(newTestRouter(t, &fakeRunner{}, nil), "/api/screen/latest")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no runs", func(t *testing.T) {
		rec := get(newTestRouter(t, &fakeRunner{}, &fakeStore{err: selection.ErrNoRuns}), "/api/screen/latest")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		rec := get(newTestRouter(t, &fakeRunner{}, &fakeStore{err: errors.New("db down")}), "/api/screen/latest")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("found", func(t *testing.T) {
		store := &fakeStore{run: &contracts.ScreeningRun{ID: "run-9", Rejections: map[string]int{}}}
		rec := get(newTestRouter(t, &fakeRunner{}, store), "/api/screen/latest")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"run-9"`)
	})
}

func TestStrategy(t *testing.T) {
	rec := get(newTestRouter(t, &fakeRunner{}, nil), "/api/strategy")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Strategy struct {
			Meta struct {
				StrategyID string `json:"strategy_id"`
			} `json:"meta"`
		} `json:"strategy"`
		Hash     string        `json:"hash"`
		Warnings []interface{} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fundamentus_default", body.Strategy.Meta.StrategyID)
	assert.Len(t, body.Hash, 64)
	assert.NotNil(t, body.Warnings)
	assert.Empty(t, body.Warnings)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	router := newTestRouter(t, &fakeRunner{}, nil)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screen", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
