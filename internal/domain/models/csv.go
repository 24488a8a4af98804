package models

// CsvDocument is the canonical export layout: a header plus data rows, date
// first, then the ticket column tagging every row with its symbol.
type CsvDocument struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the document carries no rows.
func (d *CsvDocument) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// Concat merges documents in order, preserving per-symbol row order. Column
// sets normally match across symbols fetched from the same source; when they
// differ the union is taken in first-seen order and missing cells stay blank.
func Concat(docs ...*CsvDocument) *CsvDocument {
	out := &CsvDocument{}
	colIdx := make(map[string]int)
	for _, doc := range docs {
		if doc.Empty() {
			continue
		}
		for _, col := range doc.Columns {
			if _, ok := colIdx[col]; !ok {
				colIdx[col] = len(out.Columns)
				out.Columns = append(out.Columns, col)
			}
		}
	}
	for _, doc := range docs {
		if doc.Empty() {
			continue
		}
		for _, row := range doc.Rows {
			merged := make([]string, len(out.Columns))
			for i, col := range doc.Columns {
				if i < len(row) {
					merged[colIdx[col]] = row[i]
				}
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}
