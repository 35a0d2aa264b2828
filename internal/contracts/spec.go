package contracts

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FilterSpec holds one threshold per filterable field.
// Comparison directions are fixed by the screener, not carried here.
type FilterSpec struct {
	MinPE                decimal.Decimal `json:"pe_min"`
	MaxPB                decimal.Decimal `json:"pb_max"`
	MinROIC              decimal.Decimal `json:"roic_min"`
	MinROE               decimal.Decimal `json:"roe_min"`
	MinNetMargin         decimal.Decimal `json:"net_margin_min"`
	MinEBITMargin        decimal.Decimal `json:"ebit_margin_min"`
	MinRevenueGrowth5Y   decimal.Decimal `json:"revenue_growth_5y_min"`
	MinCurrentLiquidity  decimal.Decimal `json:"current_liquidity_min"`
	MinLiquidity2M       decimal.Decimal `json:"liquidity_2m_min"`
	MaxGrossDebtToEquity decimal.Decimal `json:"gross_debt_equity_max"`
}

// DefaultFilterSpec returns the value + quality + liquidity screen
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		MinPE:                decimal.Zero,
		MaxPB:                decimal.NewFromInt(1),
		MinROIC:              decimal.Zero,
		MinROE:               decimal.Zero,
		MinNetMargin:         decimal.Zero,
		MinEBITMargin:        decimal.Zero,
		MinRevenueGrowth5Y:   decimal.Zero,
		MinCurrentLiquidity:  decimal.NewFromInt(1),
		MinLiquidity2M:       decimal.NewFromInt(1_000_000),
		MaxGrossDebtToEquity: decimal.NewFromInt(1),
	}
}

// Direction is the order of one rank pass
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// RankPass is one stable single-key sort
type RankPass struct {
	Field     Field     `json:"field" yaml:"field"`
	Direction Direction `json:"order" yaml:"order"`
}

// RankSpec is applied pass by pass; the last pass is the dominant key
type RankSpec []RankPass

// DefaultRankSpec returns the documented pass sequence.
// Two-month liquidity is filtered on but never ranked.
func DefaultRankSpec() RankSpec {
	return RankSpec{
		{Field: FieldPE, Direction: Ascending},
		{Field: FieldPB, Direction: Ascending},
		{Field: FieldROIC, Direction: Descending},
		{Field: FieldROE, Direction: Descending},
		{Field: FieldNetMargin, Direction: Descending},
		{Field: FieldEBITMargin, Direction: Descending},
		{Field: FieldRevenueGrowth5Y, Direction: Descending},
		{Field: FieldCurrentLiquidity, Direction: Descending},
		{Field: FieldGrossDebtToEquity, Direction: Ascending},
	}
}

// Validate checks every pass names a known field and direction
func (s RankSpec) Validate() error {
	for i, p := range s {
		if !p.Field.Valid() {
			return fmt.Errorf("rank pass %d: unknown field %q", i, p.Field)
		}
		if p.Direction != Ascending && p.Direction != Descending {
			return fmt.Errorf("rank pass %d: direction must be %q or %q, got %q", i, Ascending, Descending, p.Direction)
		}
	}
	return nil
}

// ParseDirection accepts asc/ascending and desc/descending
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown rank order %q", s)
}
