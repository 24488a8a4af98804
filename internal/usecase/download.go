package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vnquote/internal/domain/models"
	drepo "vnquote/internal/domain/repository"
	"vnquote/internal/exporter"
	"vnquote/pkg/logger"
	"vnquote/pkg/util"
)

// DownloadOptions carries the static configuration of a DownloadUseCase.
type DownloadOptions struct {
	DefaultSource string
	DefaultSymbol string
	ShowLog       bool
	Metrics       drepo.Metrics
	Logger        *logger.Logger
}

// DownloadUseCase generates CSV exports of historical price data. An
// instance holds only static configuration and is safe to reuse across
// independent requests; all per-request state stays on the stack.
type DownloadUseCase struct {
	fetcher *RetryingFetcher
	metrics drepo.Metrics
	log     *logger.Logger

	defaultSource string
	defaultSymbol string
	showLog       bool
}

// NewDownloadUseCase creates a download service over the given fetcher.
func NewDownloadUseCase(fetcher *RetryingFetcher, opts DownloadOptions) *DownloadUseCase {
	m := opts.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	src := opts.DefaultSource
	if src == "" {
		src = models.SourceVCI
	}
	return &DownloadUseCase{
		fetcher:       fetcher,
		metrics:       m,
		log:           opts.Logger,
		defaultSource: src,
		defaultSymbol: opts.DefaultSymbol,
		showLog:       opts.ShowLog,
	}
}

// DownloadParams describes a single-symbol export.
type DownloadParams struct {
	Symbol    string // falls back to the configured default symbol
	StartDate string
	EndDate   string
	Interval  string // falls back to daily
	Source    string // falls back to the configured default source
}

// ToCSV validates the request, fetches the price series and returns it as
// CSV text with the trading date first and the ticket column tagging every
// row with the symbol.
func (uc *DownloadUseCase) ToCSV(ctx context.Context, p DownloadParams) (string, error) {
	req, err := uc.buildRequest(p)
	if err != nil {
		return "", err
	}
	doc, err := uc.run(ctx, req)
	if err != nil {
		return "", err
	}
	return exporter.Marshal(doc)
}

// SaveParams describes a file export. Filename is auto-generated when empty;
// Path defaults to the current directory.
type SaveParams struct {
	DownloadParams
	Filename string
	Path     string
}

// SaveCSV runs the same pipeline as ToCSV and persists the document,
// returning the resolved file path. Missing directories are created.
func (uc *DownloadUseCase) SaveCSV(ctx context.Context, p SaveParams) (string, error) {
	req, err := uc.buildRequest(p.DownloadParams)
	if err != nil {
		return "", err
	}
	doc, err := uc.run(ctx, req)
	if err != nil {
		return "", err
	}

	filename := p.Filename
	if filename == "" {
		stamp := time.Now().Format("20060102_150405")
		filename = fmt.Sprintf("%s_%s_%s_%s.csv", req.Symbol, req.StartDate, req.EndDate, stamp)
	}
	if !strings.HasSuffix(filename, ".csv") {
		filename += ".csv"
	}
	dir := p.Path
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, filename)

	if err := exporter.WriteFile(path, doc); err != nil {
		return "", err
	}
	if uc.showLog && uc.log != nil {
		uc.log.Info("csv file saved",
			logger.String("symbol", req.Symbol),
			logger.String("path", path),
			logger.Int("rows", len(doc.Rows)))
	}
	return path, nil
}

// MultiParams describes a batch export across several symbols.
type MultiParams struct {
	Symbols   []string
	StartDate string
	EndDate   string
	Interval  string
	Source    string
	Combine   bool
}

// MultiResult is the outcome of a batch export: Combined holds the merged
// CSV text in combine mode, Batch the per-symbol mapping otherwise.
type MultiResult struct {
	Combined string
	Batch    *models.BatchResult
}

// DownloadMultiple exports several symbols with per-symbol failure
// isolation: one symbol failing never aborts its siblings. In combine mode
// the successfully fetched series are concatenated into a single document,
// and only the case where every symbol failed is an error.
func (uc *DownloadUseCase) DownloadMultiple(ctx context.Context, p MultiParams) (*MultiResult, error) {
	start, ok := util.NormalizeDate(p.StartDate)
	if !ok {
		return nil, NewValidationError(KindInvalidDateFormat, "start_date", "date must be in DD-MM-YYYY or YYYY-MM-DD format")
	}
	end, ok := util.NormalizeDate(p.EndDate)
	if !ok {
		return nil, NewValidationError(KindInvalidDateFormat, "end_date", "date must be in DD-MM-YYYY or YYYY-MM-DD format")
	}

	if p.Combine {
		return uc.downloadCombined(ctx, p, start, end)
	}
	return uc.downloadSeparate(ctx, p, start, end)
}

func (uc *DownloadUseCase) downloadSeparate(ctx context.Context, p MultiParams, start, end string) (*MultiResult, error) {
	batch := &models.BatchResult{
		Symbols: append([]string{}, p.Symbols...),
		CSV:     make(map[string]*string, len(p.Symbols)),
	}
	for _, symbol := range p.Symbols {
		csvText, err := uc.ToCSV(ctx, DownloadParams{
			Symbol:    symbol,
			StartDate: start,
			EndDate:   end,
			Interval:  p.Interval,
			Source:    p.Source,
		})
		if err != nil {
			uc.logSymbolFailure(symbol, err)
			batch.CSV[symbol] = nil
			continue
		}
		batch.CSV[symbol] = &csvText
	}
	return &MultiResult{Batch: batch}, nil
}

func (uc *DownloadUseCase) downloadCombined(ctx context.Context, p MultiParams, start, end string) (*MultiResult, error) {
	interval := p.Interval
	if interval == "" {
		interval = models.IntervalDaily
	}
	source := p.Source
	if source == "" {
		source = uc.defaultSource
	}

	var docs []*models.CsvDocument
	for _, symbol := range p.Symbols {
		series, err := uc.fetcher.Fetch(ctx, drepo.HistoryRequest{
			Symbol:   strings.ToUpper(symbol),
			Start:    start,
			End:      end,
			Interval: interval,
			Source:   source,
		})
		if err != nil {
			uc.logSymbolFailure(symbol, err)
			continue
		}
		if series.Empty() {
			continue
		}
		docs = append(docs, exporter.Shape(series, symbol))
	}
	if len(docs) == 0 {
		return nil, NewValidationError(KindNoDataFetched, "", "no data could be fetched for any symbols")
	}

	combined := models.Concat(docs...)
	uc.metrics.RecordRowsExported("combined", len(combined.Rows))
	text, err := exporter.Marshal(combined)
	if err != nil {
		return nil, err
	}
	return &MultiResult{Combined: text}, nil
}

// buildRequest fills defaults and validates a single-symbol request.
func (uc *DownloadUseCase) buildRequest(p DownloadParams) (*models.DownloadRequest, error) {
	symbol := p.Symbol
	if symbol == "" {
		symbol = uc.defaultSymbol
	}
	source := p.Source
	if source == "" {
		source = uc.defaultSource
	}
	req, err := ValidateDownloadRequest(&models.DownloadRequest{
		Symbol:    symbol,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Source:    source,
		Interval:  p.Interval,
	})
	if err != nil {
		uc.metrics.RecordDownload(source, "invalid")
		return nil, err
	}
	return req, nil
}

// run normalizes dates, fetches and shapes one validated request.
func (uc *DownloadUseCase) run(ctx context.Context, req *models.DownloadRequest) (*models.CsvDocument, error) {
	start, _ := util.NormalizeDate(req.StartDate)
	end, _ := util.NormalizeDate(req.EndDate)

	series, err := uc.fetcher.Fetch(ctx, drepo.HistoryRequest{
		Symbol:   req.Symbol,
		Start:    start,
		End:      end,
		Interval: req.Interval,
		Source:   req.Source,
	})
	if err != nil {
		uc.metrics.RecordDownload(req.Source, "error")
		return nil, err
	}

	doc := exporter.Shape(series, req.Symbol)
	uc.metrics.RecordDownload(req.Source, "ok")
	uc.metrics.RecordRowsExported(req.Symbol, len(doc.Rows))
	return doc, nil
}

func (uc *DownloadUseCase) logSymbolFailure(symbol string, err error) {
	if uc.showLog && uc.log != nil {
		uc.log.Warn("failed to fetch data for symbol",
			logger.String("symbol", symbol),
			logger.Error(err))
	}
}
