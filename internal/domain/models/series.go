package models

// DateLocation tells where a price series keeps its trading date.
type DateLocation int

const (
	// DateNone means no date was detected anywhere in the series.
	DateNone DateLocation = iota
	// DateInIndex means the trading date is the row key, not a data field.
	DateInIndex
	// DateInField means the trading date lives in a named data field.
	DateInField
)

// SeriesRow is one trading record. Key carries the row index value as
// delivered by the provider (the trading date for date-indexed series).
type SeriesRow struct {
	Key    string
	Values []string
}

// PriceSeries is an ordered table of historical quotes for one symbol.
// Fields keeps the provider's column order; values stay as provider-formatted
// strings so numeric formatting survives into CSV output untouched.
// A series is request-scoped: produced fresh per fetch, never cached.
type PriceSeries struct {
	Fields    []string
	DateLoc   DateLocation
	DateField string // field name when DateLoc == DateInField
	Rows      []SeriesRow
}

// Empty reports whether the series carries no rows.
func (s *PriceSeries) Empty() bool {
	return s == nil || len(s.Rows) == 0
}
