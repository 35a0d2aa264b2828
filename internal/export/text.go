package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wonny/valuescreen/internal/contracts"
)

// TextExporter writes an aligned table for terminal display
type TextExporter struct{}

func (TextExporter) Extension() string { return "txt" }

func (TextExporter) Export(w io.Writer, rs contracts.ResultSet) error {
	columns := append([]string{"#"}, header()...)

	rows := make([][]string, 0, len(rs.Records))
	for _, r := range rs.Records {
		rows = append(rows, append([]string{strconv.Itoa(r.Rank)}, row(r.Record)...))
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, r := range rows {
		for i, v := range r {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeLine(&b, columns, widths)

	total := 0
	for _, width := range widths {
		total += width
	}
	total += 2 * (len(widths) - 1)
	b.WriteString(strings.Repeat("─", total))
	b.WriteByte('\n')

	for _, r := range rows {
		writeLine(&b, r, widths)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLine(b *strings.Builder, values []string, widths []int) {
	for i, v := range values {
		if i == len(values)-1 {
			b.WriteString(v)
			break
		}
		fmt.Fprintf(b, "%-*s  ", widths[i], v)
	}
	b.WriteByte('\n')
}
