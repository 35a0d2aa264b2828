package export

import (
	"encoding/json"
	"io"

	"github.com/wonny/valuescreen/internal/contracts"
)

// JSONExporter writes the result set as indented JSON
type JSONExporter struct{}

func (JSONExporter) Extension() string { return "json" }

func (JSONExporter) Export(w io.Writer, rs contracts.ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}
