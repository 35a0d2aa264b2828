package contracts

import "context"

// Source acquires one raw snapshot
// ⭐ SSOT: 데이터 수집 인터페이스
type Source interface {
	Fetch(ctx context.Context) (*RawTable, error)
}

// Sink persists a finished screening run
// ⭐ SSOT: 결과 저장 인터페이스
type Sink interface {
	Name() string
	Save(ctx context.Context, run *ScreeningRun) error
}
