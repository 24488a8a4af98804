package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vnquote/internal/domain/models"
	"vnquote/pkg/util"
)

// TicketColumn tags every exported row with its stock symbol.
const TicketColumn = "ticket"

// IndexColumn is the header used when the trading date arrives as the row
// key rather than a data field.
const IndexColumn = "Date"

// Shape transforms a fetched price series into the canonical CSV layout:
// dates reformatted to YYYY-MM-DD (best-effort, unparsable values kept as-is)
// and a ticket column carrying the upper-cased symbol. The ticket column sits
// immediately after the date field when the series has one; for date-indexed
// series the row key is materialized as a leading Date column and ticket
// follows it. Without any detected date the ticket lands last.
// An empty series shapes to an empty document.
func Shape(s *models.PriceSeries, symbol string) *models.CsvDocument {
	if s.Empty() {
		return &models.CsvDocument{}
	}
	symbol = strings.ToUpper(symbol)

	switch s.DateLoc {
	case models.DateInIndex:
		return shapeIndexed(s, symbol)
	case models.DateInField:
		if idx := fieldIndex(s.Fields, s.DateField); idx >= 0 {
			return shapeDateField(s, symbol, idx)
		}
		return shapeNoDate(s, symbol)
	default:
		return shapeNoDate(s, symbol)
	}
}

func shapeIndexed(s *models.PriceSeries, symbol string) *models.CsvDocument {
	doc := &models.CsvDocument{
		Columns: append([]string{IndexColumn, TicketColumn}, s.Fields...),
	}
	for _, row := range s.Rows {
		out := make([]string, 0, len(doc.Columns))
		out = append(out, util.FormatDateValue(row.Key), symbol)
		out = append(out, row.Values...)
		doc.Rows = append(doc.Rows, out)
	}
	return doc
}

func shapeDateField(s *models.PriceSeries, symbol string, dateIdx int) *models.CsvDocument {
	doc := &models.CsvDocument{Columns: make([]string, 0, len(s.Fields)+1)}
	doc.Columns = append(doc.Columns, s.Fields[:dateIdx+1]...)
	doc.Columns = append(doc.Columns, TicketColumn)
	doc.Columns = append(doc.Columns, s.Fields[dateIdx+1:]...)
	for _, row := range s.Rows {
		out := make([]string, 0, len(doc.Columns))
		for i, v := range row.Values {
			if i == dateIdx {
				v = util.FormatDateValue(v)
			}
			out = append(out, v)
			if i == dateIdx {
				out = append(out, symbol)
			}
		}
		doc.Rows = append(doc.Rows, out)
	}
	return doc
}

func shapeNoDate(s *models.PriceSeries, symbol string) *models.CsvDocument {
	doc := &models.CsvDocument{
		Columns: append(append([]string{}, s.Fields...), TicketColumn),
	}
	for _, row := range s.Rows {
		doc.Rows = append(doc.Rows, append(append([]string{}, row.Values...), symbol))
	}
	return doc
}

func fieldIndex(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Write serializes a document as UTF-8 comma-separated text with a header
// row. An empty document yields no output at all.
func Write(w io.Writer, doc *models.CsvDocument) error {
	if doc.Empty() {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(doc.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range doc.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Marshal renders a document to CSV text.
func Marshal(doc *models.CsvDocument) (string, error) {
	var b strings.Builder
	if err := Write(&b, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteFile persists a document to path, creating parent directories as
// needed.
func WriteFile(path string, doc *models.CsvDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if err := Write(f, doc); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
