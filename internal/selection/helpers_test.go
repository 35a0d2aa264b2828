package selection

import (
	"github.com/shopspring/decimal"
	"github.com/wonny/valuescreen/internal/contracts"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recordA and recordB pass the default filters; A is better or tied on every ranked key
func recordA() contracts.Record {
	return contracts.Record{
		Symbol: "AAAA3", Price: d("10"), PE: d("5"), PB: d("0.5"), ROIC: d("15"), ROE: d("12"),
		NetMargin: d("10"), EBITMargin: d("10"), RevenueGrowth5Y: d("8"), CurrentLiquidity: d("2"),
		Liquidity2M: d("5000000"), GrossDebtToEquity: d("0.3"),
	}
}

func recordB() contracts.Record {
	return contracts.Record{
		Symbol: "BBBB4", Price: d("20"), PE: d("8"), PB: d("0.9"), ROIC: d("10"), ROE: d("9"),
		NetMargin: d("8"), EBITMargin: d("7"), RevenueGrowth5Y: d("3"), CurrentLiquidity: d("1.5"),
		Liquidity2M: d("2000000"), GrossDebtToEquity: d("0.6"),
	}
}

// rawRow renders a record the way acquisition hands it over:
// percentage columns as text, the rest decoded.
func rawRow(r contracts.Record) contracts.RawRecord {
	row := contracts.RawRecord{contracts.SymbolColumn: contracts.TextCell(r.Symbol)}
	for _, f := range contracts.Fields() {
		v := r.Value(f)
		if f.IsPercent() {
			row[f.Column()] = contracts.TextCell(brPercent(v))
			continue
		}
		row[f.Column()] = contracts.NumberCell(v.String(), v)
	}
	return row
}

func brPercent(v decimal.Decimal) string {
	s := v.StringFixed(2)
	out := []byte(s)
	for i, c := range out {
		if c == '.' {
			out[i] = ','
		}
	}
	return string(out) + "%"
}

func rawTable(rows ...contracts.RawRecord) *contracts.RawTable {
	return &contracts.RawTable{
		Columns: contracts.RequiredColumns(),
		Rows:    rows,
		Source:  "test",
	}
}
