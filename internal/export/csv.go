package export

import (
	"encoding/csv"
	"io"

	"github.com/wonny/valuescreen/internal/contracts"
)

// utf8BOM lets spreadsheet tools detect UTF-8 and keep "Cotação" intact
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter writes a BOM-prefixed CSV with the source column labels
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Export(out io.Writer, rs contracts.ResultSet) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(out)
	if err := w.Write(header()); err != nil {
		return err
	}
	for _, r := range rs.Records {
		if err := w.Write(row(r.Record)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
