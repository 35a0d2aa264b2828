package contracts

import (
	"fmt"
	"strings"
)

// Field names one normalized attribute of a record
type Field string

// Normalized fields, in display order
const (
	FieldPrice             Field = "price"
	FieldPE                Field = "pe"
	FieldPB                Field = "pb"
	FieldROIC              Field = "roic"
	FieldROE               Field = "roe"
	FieldNetMargin         Field = "net_margin"
	FieldEBITMargin        Field = "ebit_margin"
	FieldRevenueGrowth5Y   Field = "revenue_growth_5y"
	FieldCurrentLiquidity  Field = "current_liquidity"
	FieldLiquidity2M       Field = "liquidity_2m"
	FieldGrossDebtToEquity Field = "gross_debt_equity"
)

// SymbolColumn is the source header holding the ticker
const SymbolColumn = "Papel"

// columnLabels maps fields to the source table headers
// ⭐ SSOT: 원본 컬럼명은 여기서만
var columnLabels = map[Field]string{
	FieldPrice:             "Cotação",
	FieldPE:                "P/L",
	FieldPB:                "P/VP",
	FieldROIC:              "ROIC",
	FieldROE:               "ROE",
	FieldNetMargin:         "Mrg. Líq.",
	FieldEBITMargin:        "Mrg Ebit",
	FieldRevenueGrowth5Y:   "Cresc. Rec.5a",
	FieldCurrentLiquidity:  "Liq. Corr.",
	FieldLiquidity2M:       "Liq.2meses",
	FieldGrossDebtToEquity: "Dív.Brut/ Patrim.",
}

var allFields = []Field{
	FieldPrice,
	FieldPE,
	FieldPB,
	FieldROIC,
	FieldROE,
	FieldNetMargin,
	FieldEBITMargin,
	FieldRevenueGrowth5Y,
	FieldCurrentLiquidity,
	FieldLiquidity2M,
	FieldGrossDebtToEquity,
}

// Fields returns every normalized field in display order
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// Column returns the source header of the field
func (f Field) Column() string {
	return columnLabels[f]
}

// IsPercent reports whether the source renders the field with a trailing "%"
func (f Field) IsPercent() bool {
	switch f {
	case FieldROIC, FieldROE, FieldNetMargin, FieldEBITMargin, FieldRevenueGrowth5Y:
		return true
	}
	return false
}

// Valid reports whether f is a known field
func (f Field) Valid() bool {
	_, ok := columnLabels[f]
	return ok
}

// ParseField accepts a field key ("pe") or its source header ("P/L")
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	if f := Field(strings.ToLower(s)); f.Valid() {
		return f, nil
	}
	for f, label := range columnLabels {
		if label == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// RequiredColumns lists every header the normalizer needs, symbol first
func RequiredColumns() []string {
	cols := make([]string, 0, len(allFields)+1)
	cols = append(cols, SymbolColumn)
	for _, f := range allFields {
		cols = append(cols, f.Column())
	}
	return cols
}
