package selection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySymbol is the cause of a ParseError on a row without a ticker
var ErrEmptySymbol = errors.New("empty symbol")

// SchemaError reports required columns absent from the acquired table.
// Fatal for the run: nothing downstream is meaningful without the full field set.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing columns: %s", strings.Join(e.Missing, ", "))
}
