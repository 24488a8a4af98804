package usecase

import (
	"context"
	"time"

	"vnquote/internal/domain/models"
	drepo "vnquote/internal/domain/repository"
	"vnquote/pkg/logger"
	"vnquote/pkg/retry"
)

// RetryingFetcher wraps the quote provider with the shared retry policy.
// Every Fetch call gets its own retry budget; once attempts run out the
// provider's error is surfaced unchanged so callers can still tell network
// failures from data failures.
type RetryingFetcher struct {
	provider drepo.QuoteProvider
	policy   retry.Policy
	metrics  drepo.Metrics
	log      *logger.Logger
}

// NewRetryingFetcher creates a fetcher over the given provider. metrics and
// log may be nil.
func NewRetryingFetcher(provider drepo.QuoteProvider, policy retry.Policy, metrics drepo.Metrics, log *logger.Logger) *RetryingFetcher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RetryingFetcher{provider: provider, policy: policy, metrics: metrics, log: log}
}

// Fetch retrieves the historical price series for one symbol, retrying
// transient provider failures with exponential backoff.
func (f *RetryingFetcher) Fetch(ctx context.Context, req drepo.HistoryRequest) (*models.PriceSeries, error) {
	started := time.Now()
	series, err := retry.Do(ctx, f.policy, func(ctx context.Context) (*models.PriceSeries, error) {
		return f.provider.History(ctx, req)
	}, func(err error, wait time.Duration) {
		f.metrics.RecordRetry(req.Source)
		if f.log != nil {
			f.log.Warn("history fetch failed, retrying",
				logger.String("symbol", req.Symbol),
				logger.String("source", req.Source),
				logger.Duration("wait", wait),
				logger.Error(err))
		}
	})
	f.metrics.RecordLatency("fetch", time.Since(started).Seconds())
	return series, err
}

// nopMetrics discards all observations.
type nopMetrics struct{}

func (nopMetrics) RecordDownload(string, string)  {}
func (nopMetrics) RecordRetry(string)             {}
func (nopMetrics) RecordRowsExported(string, int) {}
func (nopMetrics) RecordLatency(string, float64)  {}
