package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/valuescreen/internal/brain"
	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/export"
	"github.com/wonny/valuescreen/internal/locale"
	"github.com/wonny/valuescreen/internal/selection"
	"github.com/wonny/valuescreen/internal/strategyconfig"
	"github.com/wonny/valuescreen/pkg/logger"
	"github.com/wonny/valuescreen/pkg/redis"
)

// Runner runs one screening pipeline
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// RunStore returns the most recent persisted run
type RunStore interface {
	LatestRun(ctx context.Context) (*contracts.ScreeningRun, error)
}

// ScreenHandler handles screening API endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	runner     Runner
	store      RunStore // nil when persistence is disabled
	strategy   *strategyconfig.Config
	yaml       []byte
	hash       string
	defaultTop int
	cache      *redis.Cache // nil disables response caching
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewScreenHandler creates a new screen handler.
// defaultTop is the N used when a request carries no top parameter.
func NewScreenHandler(
	runner Runner,
	store RunStore,
	strategy *strategyconfig.Config,
	defaultTop int,
	cache *redis.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) (*ScreenHandler, error) {
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := strategyconfig.Encode(&buf, strategy); err != nil {
		return nil, err
	}

	return &ScreenHandler{
		runner:     runner,
		store:      store,
		strategy:   strategy,
		yaml:       buf.Bytes(),
		hash:       hash,
		defaultTop: defaultTop,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     log,
	}, nil
}

// ScreenResponse is the JSON body of a screening run
type ScreenResponse struct {
	RunID        string                    `json:"run_id"`
	StrategyID   string                    `json:"strategy_id"`
	StrategyHash string                    `json:"strategy_hash"`
	Source       string                    `json:"source"`
	FetchedAt    time.Time                 `json:"fetched_at"`
	Top          int                       `json:"top"`
	Normalize    selection.NormalizeReport `json:"normalize"`
	Screen       selection.ScreenReport    `json:"screen"`
	Result       contracts.ResultSet       `json:"result"`

	// Decision ties the result to the exact strategy and snapshot that produced it
	Decision *strategyconfig.DecisionSnapshot `json:"decision"`
}

// Screen runs the pipeline with the loaded strategy
// GET /api/screen?top=15&format=json|csv|text
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	top := h.defaultTop
	if v := query.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "top must be an integer")
			return
		}
		top = n
	}

	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	if format == "" {
		format = export.FormatJSON
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := redis.ScreenKey(h.hash, top)
	if format == export.FormatJSON && h.cache != nil {
		cached, found, err := h.cache.GetBytes(ctx, key)
		if err != nil {
			h.logger.WithError(err).Warn("Screen cache read failed")
		}
		if found {
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	rank, err := h.strategy.RankSpec()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.runner.Run(ctx, brain.RunConfig{
		StrategyID:   h.strategy.Meta.StrategyID,
		StrategyHash: h.hash,
		Top:          top,
		Filter:       h.strategy.FilterSpec(),
		Rank:         rank,
	})
	if err != nil {
		h.logger.WithError(err).Error("Screening run failed")
		respondError(w, runErrorStatus(err), err.Error())
		return
	}

	if format != export.FormatJSON {
		var buf bytes.Buffer
		if err := exporter.Export(&buf, result.Result); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", contentType(format))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	decision, err := strategyconfig.NewDecisionSnapshot(h.strategy, h.yaml, dataSnapshotID(result.Table))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := json.Marshal(ScreenResponse{
		RunID:        result.RunID,
		StrategyID:   h.strategy.Meta.StrategyID,
		StrategyHash: h.hash,
		Source:       result.Table.Source,
		FetchedAt:    result.Table.FetchedAt,
		Top:          top,
		Normalize:    result.Normalize,
		Screen:       result.Screen,
		Result:       result.Result,
		Decision:     decision,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	if h.cache != nil && h.cacheTTL > 0 {
		if err := h.cache.SetBytes(ctx, key, body, h.cacheTTL); err != nil {
			h.logger.WithError(err).Warn("Screen cache write failed")
		}
	}

	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Latest returns the most recent persisted run
// GET /api/screen/latest
func (h *ScreenHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotFound, "persistence is disabled")
		return
	}

	run, err := h.store.LatestRun(r.Context())
	if errors.Is(err, selection.ErrNoRuns) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest run")
		respondError(w, http.StatusInternalServerError, "failed to load latest run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// dataSnapshotID names the acquired table as source@fetched_at
func dataSnapshotID(table *contracts.RawTable) string {
	if table.FetchedAt.IsZero() {
		return table.Source
	}
	return table.Source + "@" + table.FetchedAt.UTC().Format(time.RFC3339)
}

// runErrorStatus maps bad upstream data to 502 and everything else to 500
func runErrorStatus(err error) int {
	var pe *locale.ParseError
	var se *selection.SchemaError
	if errors.As(err, &pe) || errors.As(err, &se) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func contentType(format string) string {
	switch format {
	case export.FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
