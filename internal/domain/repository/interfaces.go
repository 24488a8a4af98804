package repository

import (
	"context"

	"vnquote/internal/domain/models"
)

// HistoryRequest identifies one historical price fetch. Dates are normalized
// YYYY-MM-DD strings by the time a provider sees them.
type HistoryRequest struct {
	Symbol   string
	Start    string
	End      string
	Interval string
	Source   string
}

// QuoteProvider is the upstream quote-history collaborator, the single point
// of network I/O in the pipeline. Errors are treated as transient and retried
// by the caller.
type QuoteProvider interface {
	History(ctx context.Context, req HistoryRequest) (*models.PriceSeries, error)
}

// Metrics records download pipeline observations.
type Metrics interface {
	RecordDownload(source, status string)
	RecordRetry(source string)
	RecordRowsExported(symbol string, n int)
	RecordLatency(op string, seconds float64)
}
