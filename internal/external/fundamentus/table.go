package fundamentus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/locale"
)

// ErrNoTable is returned when the page carries no result rows
var ErrNoTable = errors.New("no result table found")

// ParseTable extracts the result table from a UTF-8 HTML document.
// Plain locale numbers ("1.234,56") are decoded; anything else, including
// percentages, is kept as text for the normalizer.
func ParseTable(r io.Reader) (*contracts.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table#resultado").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	headers, headerRow := headerCells(table)
	if len(headers) == 0 {
		return nil, ErrNoTable
	}

	out := &contracts.RawTable{Columns: headers}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if headerRow != nil && tr.IsSelection(headerRow) {
			return
		}

		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}

		record := make(contracts.RawRecord, len(headers))
		cells.Each(func(j int, td *goquery.Selection) {
			if j >= len(headers) {
				return
			}
			record[headers[j]] = decodeCell(cellText(td))
		})
		out.Rows = append(out.Rows, record)
	})

	if out.Len() == 0 {
		return nil, ErrNoTable
	}

	return out, nil
}

// headerCells reads thead th, falling back to the first row.
// The returned row is the one the headers came from; nil for thead.
func headerCells(table *goquery.Selection) ([]string, *goquery.Selection) {
	var headerRow *goquery.Selection
	ths := table.Find("thead th")
	if ths.Length() == 0 {
		headerRow = table.Find("tr").First()
		ths = headerRow.Find("th, td")
	}

	headers := make([]string, 0, ths.Length())
	ths.Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cellText(th))
	})
	return headers, headerRow
}

// cellText collapses inner whitespace so wrapped headers match their labels
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func decodeCell(text string) contracts.Cell {
	if n, err := locale.ParsePlain(text); err == nil {
		return contracts.NumberCell(text, n)
	}
	return contracts.TextCell(text)
}
