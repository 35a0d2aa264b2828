package strategyconfig

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wonny/valuescreen/internal/contracts"
)

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Screening Screening `yaml:"screening" json:"screening"`
	Ranking   Ranking   `yaml:"ranking" json:"ranking"`
	Output    Output    `yaml:"output" json:"output"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Screening 필터 임계값 (비교 방향은 selection 패키지에 고정)
type Screening struct {
	PEMin               float64 `yaml:"pe_min" json:"pe_min"`
	PBMax               float64 `yaml:"pb_max" json:"pb_max"`
	ROICMin             float64 `yaml:"roic_min" json:"roic_min"`                           // percent number, 15 = 15%
	ROEMin              float64 `yaml:"roe_min" json:"roe_min"`                             // percent number
	NetMarginMin        float64 `yaml:"net_margin_min" json:"net_margin_min"`               // percent number
	EBITMarginMin       float64 `yaml:"ebit_margin_min" json:"ebit_margin_min"`             // percent number
	RevenueGrowth5YMin  float64 `yaml:"revenue_growth_5y_min" json:"revenue_growth_5y_min"` // percent number
	CurrentLiquidityMin float64 `yaml:"current_liquidity_min" json:"current_liquidity_min"`
	Liquidity2MMin      float64 `yaml:"liquidity_2m_min" json:"liquidity_2m_min"`
	GrossDebtEquityMax  float64 `yaml:"gross_debt_equity_max" json:"gross_debt_equity_max"`
}

// Ranking 순차 정렬 패스 (마지막 패스가 최우선 키)
type Ranking struct {
	Passes []RankPass `yaml:"passes" json:"passes"`
}

// RankPass accepts a field key ("pe") or its source header ("P/L")
type RankPass struct {
	Field string `yaml:"field" json:"field"`
	Order string `yaml:"order" json:"order"` // asc | desc
}

// Output 출력 설정
type Output struct {
	Top int `yaml:"top" json:"top"` // <= 0: 전체
}

// DecisionSnapshot 의사결정 스냅샷 (재현성용)
type DecisionSnapshot struct {
	ConfigHash     string    `json:"config_hash"`
	ConfigYAML     string    `json:"config_yaml"`
	StrategyID     string    `json:"strategy_id"`
	DataSnapshotID string    `json:"data_snapshot_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Default returns the built-in strategy, identical to the core defaults
func Default() *Config {
	cfg := &Config{
		Meta: Meta{
			StrategyID:  "fundamentus_default",
			Version:     "1",
			Description: "value + quality + liquidity",
		},
		Screening: Screening{
			PEMin:               0,
			PBMax:               1,
			ROICMin:             0,
			ROEMin:              0,
			NetMarginMin:        0,
			EBITMarginMin:       0,
			RevenueGrowth5YMin:  0,
			CurrentLiquidityMin: 1,
			Liquidity2MMin:      1_000_000,
			GrossDebtEquityMax:  1,
		},
		Output: Output{Top: 15},
	}

	for _, p := range contracts.DefaultRankSpec() {
		cfg.Ranking.Passes = append(cfg.Ranking.Passes, RankPass{
			Field: string(p.Field),
			Order: string(p.Direction),
		})
	}

	return cfg
}

// FilterSpec converts the screening section into the core's thresholds
func (c *Config) FilterSpec() contracts.FilterSpec {
	s := c.Screening
	return contracts.FilterSpec{
		MinPE:                decimal.NewFromFloat(s.PEMin),
		MaxPB:                decimal.NewFromFloat(s.PBMax),
		MinROIC:              decimal.NewFromFloat(s.ROICMin),
		MinROE:               decimal.NewFromFloat(s.ROEMin),
		MinNetMargin:         decimal.NewFromFloat(s.NetMarginMin),
		MinEBITMargin:        decimal.NewFromFloat(s.EBITMarginMin),
		MinRevenueGrowth5Y:   decimal.NewFromFloat(s.RevenueGrowth5YMin),
		MinCurrentLiquidity:  decimal.NewFromFloat(s.CurrentLiquidityMin),
		MinLiquidity2M:       decimal.NewFromFloat(s.Liquidity2MMin),
		MaxGrossDebtToEquity: decimal.NewFromFloat(s.GrossDebtEquityMax),
	}
}

// RankSpec converts the ranking section into ordered passes
func (c *Config) RankSpec() (contracts.RankSpec, error) {
	spec := make(contracts.RankSpec, 0, len(c.Ranking.Passes))
	for i, p := range c.Ranking.Passes {
		field, err := contracts.ParseField(p.Field)
		if err != nil {
			return nil, fmt.Errorf("ranking.passes[%d]: %w", i, err)
		}
		dir, err := contracts.ParseDirection(p.Order)
		if err != nil {
			return nil, fmt.Errorf("ranking.passes[%d]: %w", i, err)
		}
		spec = append(spec, contracts.RankPass{Field: field, Direction: dir})
	}
	return spec, nil
}
