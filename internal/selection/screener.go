package selection

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/logger"
)

// comparison is the fixed direction of a predicate
type comparison int

const (
	greaterThan comparison = iota
	lessThan
)

// predicate is one (field, comparison, threshold) test
type predicate struct {
	name      string
	field     contracts.Field
	cmp       comparison
	threshold func(contracts.FilterSpec) decimal.Decimal
}

// predicates are evaluated in this order; the first failure names the rejection.
// Comparisons are strict: a value equal to its threshold fails.
var predicates = []predicate{
	{"pe", contracts.FieldPE, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinPE }},
	{"pb", contracts.FieldPB, lessThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MaxPB }},
	{"roic", contracts.FieldROIC, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinROIC }},
	{"roe", contracts.FieldROE, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinROE }},
	{"net_margin", contracts.FieldNetMargin, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinNetMargin }},
	{"ebit_margin", contracts.FieldEBITMargin, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinEBITMargin }},
	{"revenue_growth_5y", contracts.FieldRevenueGrowth5Y, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinRevenueGrowth5Y }},
	{"current_liquidity", contracts.FieldCurrentLiquidity, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinCurrentLiquidity }},
	{"liquidity_2m", contracts.FieldLiquidity2M, greaterThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MinLiquidity2M }},
	{"gross_debt_equity", contracts.FieldGrossDebtToEquity, lessThan, func(s contracts.FilterSpec) decimal.Decimal { return s.MaxGrossDebtToEquity }},
}

func (p predicate) holds(r contracts.Record, spec contracts.FilterSpec) bool {
	v := r.Value(p.field)
	t := p.threshold(spec)
	if p.cmp == greaterThan {
		return v.GreaterThan(t)
	}
	return v.LessThan(t)
}

// PredicateNames lists the predicates in evaluation order
func PredicateNames() []string {
	names := make([]string, len(predicates))
	for i, p := range predicates {
		names[i] = p.name
	}
	return names
}

// ScreenReport counts what the filter kept and why it dropped the rest
type ScreenReport struct {
	Input    int            `json:"input"`
	Passed   int            `json:"passed"`
	Rejected map[string]int `json:"rejected"` // first failing predicate -> count
}

// Check returns the name of the first failing predicate, or "" if r passes all
func Check(r contracts.Record, spec contracts.FilterSpec) string {
	for _, p := range predicates {
		if !p.holds(r, spec) {
			return p.name
		}
	}
	return ""
}

// Filter returns a new slice with the records passing every predicate.
// The input is not modified; an empty result is not an error.
func Filter(records []contracts.Record, spec contracts.FilterSpec) []contracts.Record {
	passed, _ := Screen(records, spec)
	return passed
}

// Screen is Filter plus a per-predicate rejection report
func Screen(records []contracts.Record, spec contracts.FilterSpec) ([]contracts.Record, ScreenReport) {
	passed := make([]contracts.Record, 0)
	report := ScreenReport{
		Input:    len(records),
		Rejected: make(map[string]int),
	}

	for _, r := range records {
		if reason := Check(r, spec); reason != "" {
			report.Rejected[reason]++
			continue
		}
		passed = append(passed, r)
	}

	report.Passed = len(passed)
	return passed, report
}

// Screener applies the hard filters of a FilterSpec
// ⭐ SSOT: 필터 로직은 여기서만
type Screener struct {
	spec   contracts.FilterSpec
	logger *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(spec contracts.FilterSpec, logger *logger.Logger) *Screener {
	return &Screener{
		spec:   spec,
		logger: logger,
	}
}

// Spec returns the thresholds in use
func (s *Screener) Spec() contracts.FilterSpec {
	return s.spec
}

// Screen filters records and logs the rejection counts
func (s *Screener) Screen(ctx context.Context, records []contracts.Record) ([]contracts.Record, ScreenReport) {
	passed, report := Screen(records, s.spec)

	s.logger.WithFields(map[string]interface{}{
		"total_input":  report.Input,
		"passed":       report.Passed,
		"filtered_out": report.Input - report.Passed,
		"filters":      report.Rejected,
	}).Info("Screening completed")

	return passed, report
}
