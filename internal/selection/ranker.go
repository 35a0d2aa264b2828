package selection

import (
	"context"
	"fmt"
	"slices"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/logger"
)

// Rank returns a reordered copy of records after applying every pass of spec
// in declared order. Each pass is a stable single-key sort, so the last pass
// is the dominant key and earlier passes only break its ties.
func Rank(records []contracts.Record, spec contracts.RankSpec) []contracts.Record {
	out := slices.Clone(records)

	for _, pass := range spec {
		field := pass.Field
		desc := pass.Direction == contracts.Descending

		slices.SortStableFunc(out, func(a, b contracts.Record) int {
			c := a.Value(field).Cmp(b.Value(field))
			if desc {
				return -c
			}
			return c
		})
	}

	return out
}

// Ranker implements successive-sort ranking
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	spec   contracts.RankSpec
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(spec contracts.RankSpec, logger *logger.Logger) *Ranker {
	return &Ranker{
		spec:   spec,
		logger: logger,
	}
}

// Spec returns the passes in use
func (r *Ranker) Spec() contracts.RankSpec {
	return r.spec
}

// Rank validates the passes and reorders records
func (r *Ranker) Rank(ctx context.Context, records []contracts.Record) ([]contracts.Record, error) {
	if err := r.spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rank spec: %w", err)
	}

	ranked := Rank(records, r.spec)

	fields := map[string]interface{}{
		"total_stocks": len(ranked),
		"passes":       len(r.spec),
	}
	if len(ranked) > 0 {
		fields["top_code"] = ranked[0].Symbol
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked, nil
}
