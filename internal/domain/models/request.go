package models

// Data sources supported by the quote providers.
const (
	SourceVCI  = "VCI"
	SourceTCBS = "TCBS"
	SourceMSN  = "MSN"
)

// AllSources lists the accepted data sources in canonical form.
func AllSources() []string {
	return []string{SourceVCI, SourceTCBS, SourceMSN}
}

// Time frames accepted by the quote providers.
const (
	IntervalDaily     = "D"
	IntervalWeekly    = "1W"
	IntervalMonthly   = "1M"
	IntervalMinute    = "1m"
	Interval5Minutes  = "5m"
	Interval15Minutes = "15m"
	Interval30Minutes = "30m"
	IntervalHourly    = "1H"
)

// DownloadRequest describes a single CSV download. Dates are accepted in
// DD-MM-YYYY or YYYY-MM-DD form and normalized to YYYY-MM-DD before fetching;
// the symbol is upper-cased during validation.
type DownloadRequest struct {
	Symbol    string `json:"symbol" validate:"required,min=3"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Source    string `json:"source" default:"VCI"`
	Interval  string `json:"interval" default:"D" validate:"oneof=D 1W 1M 1m 5m 15m 30m 1H"`
}

// BatchResult maps each requested symbol to its CSV text. A nil entry marks a
// symbol whose fetch failed; sibling symbols are unaffected.
type BatchResult struct {
	Symbols []string           `json:"symbols"`
	CSV     map[string]*string `json:"csv_data"`
}

// Failed reports whether the given symbol produced no document.
func (r *BatchResult) Failed(symbol string) bool {
	v, ok := r.CSV[symbol]
	return !ok || v == nil
}
