package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cell is one raw table value as handed over by acquisition
type Cell struct {
	Text    string          // original cell text
	Number  decimal.Decimal // decoded value, meaningful only when Numeric
	Numeric bool            // acquisition decoded Text as a plain locale number
}

// TextCell builds an undecoded cell
func TextCell(text string) Cell {
	return Cell{Text: text}
}

// NumberCell builds a decoded cell
func NumberCell(text string, n decimal.Decimal) Cell {
	return Cell{Text: text, Number: n, Numeric: true}
}

// RawRecord maps column header to cell for one source row
type RawRecord map[string]Cell

// Symbol returns the raw ticker text of the row
func (r RawRecord) Symbol() string {
	return r[SymbolColumn].Text
}

// RawTable is a single acquired snapshot, immutable after acquisition
type RawTable struct {
	Columns   []string    `json:"columns"`
	Rows      []RawRecord `json:"-"`
	Source    string      `json:"source"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// HasColumn reports whether the header row contains name
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows
func (t *RawTable) Len() int {
	return len(t.Rows)
}
