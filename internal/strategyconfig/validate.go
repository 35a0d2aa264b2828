package strategyconfig

import (
	"fmt"

	"github.com/wonny/valuescreen/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Screening ===
	s := cfg.Screening
	if s.PBMax <= 0 {
		return ValidationError{"screening.pb_max", "must be > 0"}
	}
	if s.GrossDebtEquityMax <= 0 {
		return ValidationError{"screening.gross_debt_equity_max", "must be > 0"}
	}
	if s.CurrentLiquidityMin < 0 {
		return ValidationError{"screening.current_liquidity_min", "must be >= 0"}
	}
	if s.Liquidity2MMin < 0 {
		return ValidationError{"screening.liquidity_2m_min", "must be >= 0"}
	}

	// === Ranking ===
	if len(cfg.Ranking.Passes) == 0 {
		return ValidationError{"ranking.passes", "required"}
	}
	for i, p := range cfg.Ranking.Passes {
		field := fmt.Sprintf("ranking.passes[%d]", i)
		if _, err := contracts.ParseField(p.Field); err != nil {
			return ValidationError{field + ".field", err.Error()}
		}
		if _, err := contracts.ParseDirection(p.Order); err != nil {
			return ValidationError{field + ".order", err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// P/VP 상한이 너무 높으면 value 스크린이 아님
	if cfg.Screening.PBMax > 3 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_PB_CEILING",
			Message: "pb_max > 3: value screen is effectively disabled",
		})
	}

	// 유동성 하한 10만 미만
	if cfg.Screening.Liquidity2MMin < 100_000 {
		warnings = append(warnings, Warning{
			Code:    "LOW_LIQUIDITY",
			Message: "liquidity_2m_min < 100k: illiquid tickers may pass",
		})
	}

	seen := make(map[contracts.Field]bool)
	hasPE := false
	for _, p := range cfg.Ranking.Passes {
		f, err := contracts.ParseField(p.Field)
		if err != nil {
			continue
		}
		if seen[f] {
			warnings = append(warnings, Warning{
				Code:    "REPEATED_PASS",
				Message: fmt.Sprintf("ranking field %s appears more than once; only its last pass matters", f),
			})
		}
		seen[f] = true
		if f == contracts.FieldPE {
			hasPE = true
		}
	}

	if !hasPE {
		warnings = append(warnings, Warning{
			Code:    "NO_PE_PASS",
			Message: "ranking has no P/L pass",
		})
	}

	return warnings
}
