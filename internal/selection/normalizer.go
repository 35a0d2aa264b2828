package selection

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/locale"
	"github.com/wonny/valuescreen/pkg/logger"
)

// NormalizeReport summarizes one normalization pass
type NormalizeReport struct {
	Rows       int      `json:"rows"`       // raw rows read
	Records    int      `json:"records"`    // distinct symbols produced
	Duplicates []string `json:"duplicates"` // symbols dropped after their first occurrence
}

// Normalize turns the raw table into one record per distinct symbol.
// Percentage columns go through locale.Parse; the other numeric columns must
// already be decoded by acquisition. The first row of a repeated symbol wins.
func Normalize(table *contracts.RawTable) ([]contracts.Record, NormalizeReport, error) {
	report := NormalizeReport{Rows: table.Len()}

	if err := checkSchema(table); err != nil {
		return nil, report, err
	}

	fields := contracts.Fields()
	records := make([]contracts.Record, 0, table.Len())
	seen := make(map[string]struct{}, table.Len())

	for _, row := range table.Rows {
		symbol := strings.TrimSpace(row.Symbol())
		if symbol == "" {
			return nil, report, &locale.ParseError{
				Input:  row.Symbol(),
				Column: contracts.SymbolColumn,
				Err:    ErrEmptySymbol,
			}
		}

		if _, dup := seen[symbol]; dup {
			report.Duplicates = append(report.Duplicates, symbol)
			continue
		}
		seen[symbol] = struct{}{}

		values := make(map[contracts.Field]decimal.Decimal, len(fields))
		for _, f := range fields {
			v, err := fieldValue(row[f.Column()], f)
			if err != nil {
				var pe *locale.ParseError
				if errors.As(err, &pe) {
					pe.Symbol = symbol
					pe.Column = f.Column()
				}
				return nil, report, err
			}
			values[f] = v
		}

		records = append(records, contracts.NewRecord(symbol, values))
	}

	report.Records = len(records)
	return records, report, nil
}

func checkSchema(table *contracts.RawTable) error {
	var missing []string
	for _, col := range contracts.RequiredColumns() {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

func fieldValue(cell contracts.Cell, f contracts.Field) (decimal.Decimal, error) {
	if f.IsPercent() {
		return locale.Parse(cell.Text)
	}
	if !cell.Numeric {
		return decimal.Zero, &locale.ParseError{Input: cell.Text, Err: locale.ErrInvalidNumber}
	}
	return cell.Number, nil
}

// Normalizer wraps Normalize with logging
// ⭐ SSOT: 원본 테이블 → Record 변환은 여기서만
type Normalizer struct {
	logger *logger.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *logger.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts the table and logs a one-line summary
func (n *Normalizer) Normalize(ctx context.Context, table *contracts.RawTable) ([]contracts.Record, NormalizeReport, error) {
	start := time.Now()

	records, report, err := Normalize(table)
	if err != nil {
		n.logger.WithError(err).WithFields(map[string]interface{}{
			"source": table.Source,
			"rows":   report.Rows,
		}).Error("Normalization failed")
		return nil, report, err
	}

	if len(report.Duplicates) > 0 {
		n.logger.WithFields(map[string]interface{}{
			"duplicates": report.Duplicates,
		}).Warn("Duplicate symbols dropped")
	}

	n.logger.WithFields(map[string]interface{}{
		"rows":     report.Rows,
		"records":  report.Records,
		"duration": time.Since(start).String(),
	}).Info("Normalization completed")

	return records, report, nil
}
