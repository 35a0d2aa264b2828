package contracts

import "time"

// RankedRecord is a record with its 1-based position in the final ordering
type RankedRecord struct {
	Rank int `json:"rank"`
	Record
}

// ResultSet is the ordered output handed to display and persistence
type ResultSet struct {
	Records []RankedRecord `json:"records"`
	Total   int            `json:"total"` // ranked count before truncation
}

// NewResultSet numbers ranked records and keeps the first top of them.
// top <= 0 keeps everything.
func NewResultSet(ranked []Record, top int) ResultSet {
	n := len(ranked)
	if top > 0 && top < n {
		n = top
	}

	out := make([]RankedRecord, n)
	for i := 0; i < n; i++ {
		out[i] = RankedRecord{Rank: i + 1, Record: ranked[i]}
	}

	return ResultSet{Records: out, Total: len(ranked)}
}

// Len returns the number of records after truncation
func (rs ResultSet) Len() int {
	return len(rs.Records)
}

// ScreeningRun is one complete pipeline execution
// ⭐ SSOT: 파이프라인 실행 결과 전달 (출력/저장)
type ScreeningRun struct {
	ID           string         `json:"id"`
	StrategyID   string         `json:"strategy_id"`
	StrategyHash string         `json:"strategy_hash"`
	Source       string         `json:"source"`
	FetchedAt    time.Time      `json:"fetched_at"`
	StartedAt    time.Time      `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
	SourceRows   int            `json:"source_rows"`
	Normalized   int            `json:"normalized"`
	Duplicates   []string       `json:"duplicates,omitempty"`
	Passed       int            `json:"passed"`
	Rejections   map[string]int `json:"rejections"`
	Top          int            `json:"top"`
	Result       ResultSet      `json:"result"`
}
