package contracts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		input   string
		want    Field
		wantErr bool
	}{
		{"pe", FieldPE, false},
		{"PE", FieldPE, false},
		{"P/VP", FieldPB, false},
		{"Mrg. Líq.", FieldNetMargin, false},
		{" liquidity_2m ", FieldLiquidity2M, false},
		{"Papel", "", true},
		{"beta", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseField(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFields(t *testing.T) {
	fields := Fields()
	assert.Len(t, fields, 11)

	fields[0] = "mutated"
	assert.Equal(t, FieldPrice, Fields()[0])

	percent := 0
	for _, f := range Fields() {
		assert.NotEmpty(t, f.Column(), f)
		if f.IsPercent() {
			percent++
		}
	}
	assert.Equal(t, 5, percent)
}

func TestRequiredColumns(t *testing.T) {
	cols := RequiredColumns()
	assert.Equal(t, SymbolColumn, cols[0])
	assert.Contains(t, cols, "Cotação")
	assert.Contains(t, cols, "Dív.Brut/ Patrim.")
	assert.Len(t, cols, 12)
}

func TestRecord_Value(t *testing.T) {
	r := NewRecord("PETR4", map[Field]decimal.Decimal{
		FieldPE:          decimal.NewFromInt(4),
		FieldLiquidity2M: decimal.NewFromInt(2_000_000),
	})

	assert.Equal(t, "PETR4", r.Symbol)
	assert.True(t, r.Value(FieldPE).Equal(decimal.NewFromInt(4)))
	assert.True(t, r.Value(FieldLiquidity2M).Equal(decimal.NewFromInt(2_000_000)))
	assert.True(t, r.Value(FieldROE).IsZero())
	assert.True(t, r.Value("unknown").IsZero())
}

func TestDefaultFilterSpec(t *testing.T) {
	s := DefaultFilterSpec()
	assert.True(t, s.MaxPB.Equal(decimal.NewFromInt(1)))
	assert.True(t, s.MinLiquidity2M.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, s.MinPE.IsZero())
}

func TestRankSpec_Validate(t *testing.T) {
	require.NoError(t, DefaultRankSpec().Validate())
	assert.Len(t, DefaultRankSpec(), 9)

	assert.Error(t, RankSpec{{Field: "beta", Direction: Ascending}}.Validate())
	assert.Error(t, RankSpec{{Field: FieldPE, Direction: "up"}}.Validate())
	assert.NoError(t, RankSpec{}.Validate())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("descending")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestNewResultSet(t *testing.T) {
	ranked := []Record{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}}

	tests := []struct {
		name string
		top  int
		want []string
	}{
		{"truncate to one", 1, []string{"A"}},
		{"top larger than input", 15, []string{"A", "B", "C"}},
		{"zero means all", 0, []string{"A", "B", "C"}},
		{"negative means all", -1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewResultSet(ranked, tt.top)
			got := make([]string, 0, rs.Len())
			for i, r := range rs.Records {
				assert.Equal(t, i+1, r.Rank)
				got = append(got, r.Symbol)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 3, rs.Total)
		})
	}
}

func TestRawTable(t *testing.T) {
	table := &RawTable{
		Columns: []string{SymbolColumn, "P/L"},
		Rows:    []RawRecord{{SymbolColumn: TextCell("VALE3"), "P/L": NumberCell("5,2", decimal.RequireFromString("5.2"))}},
	}

	assert.True(t, table.HasColumn("P/L"))
	assert.False(t, table.HasColumn("ROE"))
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "VALE3", table.Rows[0].Symbol())
	assert.True(t, table.Rows[0]["P/L"].Numeric)
}
