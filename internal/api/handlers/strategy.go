package handlers

import (
	"net/http"

	"github.com/wonny/valuescreen/internal/strategyconfig"
)

// StrategyHandler exposes the loaded strategy
type StrategyHandler struct {
	strategy *strategyconfig.Config
}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler(strategy *strategyconfig.Config) *StrategyHandler {
	return &StrategyHandler{strategy: strategy}
}

// StrategyResponse is the JSON body of GET /api/strategy
type StrategyResponse struct {
	Strategy *strategyconfig.Config   `json:"strategy"`
	Hash     string                   `json:"hash"`
	Warnings []strategyconfig.Warning `json:"warnings"`
}

// Get returns the strategy, its hash and advisory warnings
// GET /api/strategy
func (h *StrategyHandler) Get(w http.ResponseWriter, r *http.Request) {
	hash, err := strategyconfig.Hash(h.strategy)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	warnings := strategyconfig.Warn(h.strategy)
	if warnings == nil {
		warnings = []strategyconfig.Warning{}
	}

	respondJSON(w, http.StatusOK, StrategyResponse{
		Strategy: h.strategy,
		Hash:     hash,
		Warnings: warnings,
	})
}
