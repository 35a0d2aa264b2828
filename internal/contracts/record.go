package contracts

import "github.com/shopspring/decimal"

// Record is a normalized row keyed by its symbol
// ⭐ SSOT: Normalizer → Screener → Ranker 전달 타입
type Record struct {
	Symbol            string          `json:"symbol"`
	Price             decimal.Decimal `json:"price"`
	PE                decimal.Decimal `json:"pe"`
	PB                decimal.Decimal `json:"pb"`
	ROIC              decimal.Decimal `json:"roic"`
	ROE               decimal.Decimal `json:"roe"`
	NetMargin         decimal.Decimal `json:"net_margin"`
	EBITMargin        decimal.Decimal `json:"ebit_margin"`
	RevenueGrowth5Y   decimal.Decimal `json:"revenue_growth_5y"`
	CurrentLiquidity  decimal.Decimal `json:"current_liquidity"`
	Liquidity2M       decimal.Decimal `json:"liquidity_2m"`
	GrossDebtToEquity decimal.Decimal `json:"gross_debt_equity"`
}

// NewRecord builds a record; fields missing from values stay zero
func NewRecord(symbol string, values map[Field]decimal.Decimal) Record {
	return Record{
		Symbol:            symbol,
		Price:             values[FieldPrice],
		PE:                values[FieldPE],
		PB:                values[FieldPB],
		ROIC:              values[FieldROIC],
		ROE:               values[FieldROE],
		NetMargin:         values[FieldNetMargin],
		EBITMargin:        values[FieldEBITMargin],
		RevenueGrowth5Y:   values[FieldRevenueGrowth5Y],
		CurrentLiquidity:  values[FieldCurrentLiquidity],
		Liquidity2M:       values[FieldLiquidity2M],
		GrossDebtToEquity: values[FieldGrossDebtToEquity],
	}
}

// Value returns the field value; unknown fields yield zero
func (r Record) Value(f Field) decimal.Decimal {
	switch f {
	case FieldPrice:
		return r.Price
	case FieldPE:
		return r.PE
	case FieldPB:
		return r.PB
	case FieldROIC:
		return r.ROIC
	case FieldROE:
		return r.ROE
	case FieldNetMargin:
		return r.NetMargin
	case FieldEBITMargin:
		return r.EBITMargin
	case FieldRevenueGrowth5Y:
		return r.RevenueGrowth5Y
	case FieldCurrentLiquidity:
		return r.CurrentLiquidity
	case FieldLiquidity2M:
		return r.Liquidity2M
	case FieldGrossDebtToEquity:
		return r.GrossDebtToEquity
	}
	return decimal.Zero
}

// Symbols returns the keys of records in order
func Symbols(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}
