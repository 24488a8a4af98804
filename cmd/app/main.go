package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	drepo "vnquote/internal/domain/repository"
	"vnquote/internal/service/quote"
	"vnquote/internal/usecase"
	"vnquote/pkg/config"
	"vnquote/pkg/logger"
	"vnquote/pkg/metrics"
	"vnquote/pkg/retry"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbols := flag.String("symbols", "", "comma-separated stock symbols")
	start := flag.String("start", "", "start date (DD-MM-YYYY or YYYY-MM-DD)")
	end := flag.String("end", "", "end date (DD-MM-YYYY or YYYY-MM-DD)")
	interval := flag.String("interval", "", "interval: D 1W 1M 1m 5m 15m 30m 1H")
	source := flag.String("source", "", "data source override (VCI, TCBS, MSN)")
	combine := flag.Bool("combine", false, "merge all symbols into one CSV")
	outDir := flag.String("out", "", "output directory (default from config)")
	filename := flag.String("filename", "", "output filename (single symbol or combined mode)")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := logger.New(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	var m drepo.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	provider := quote.New(cfg.SourceURLs(),
		quote.WithTimeout(cfg.HTTP.Timeout),
		quote.WithRandomAgent(cfg.HTTP.RandomAgent),
	)
	fetcher := usecase.NewRetryingFetcher(provider, retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Multiplier:  cfg.Retry.BackoffMultiplier,
		MinWait:     cfg.Retry.BackoffMin,
		MaxWait:     cfg.Retry.BackoffMax,
	}, m, l)
	uc := usecase.NewDownloadUseCase(fetcher, usecase.DownloadOptions{
		DefaultSource: cfg.Download.DefaultSource,
		DefaultSymbol: cfg.Download.DefaultSymbol,
		ShowLog:       cfg.Download.ShowLog,
		Metrics:       m,
		Logger:        l,
	})

	list := splitSymbols(*symbols)
	if len(list) == 0 && cfg.Download.DefaultSymbol != "" {
		list = []string{cfg.Download.DefaultSymbol}
	}
	if len(list) == 0 {
		log.Fatalf("no symbols given; use -symbols")
	}
	if *start == "" || *end == "" {
		log.Fatalf("both -start and -end are required")
	}

	dir := *outDir
	if dir == "" {
		dir = cfg.Download.OutputDir
	}
	ctx := context.Background()

	switch {
	case len(list) == 1:
		path, err := uc.SaveCSV(ctx, usecase.SaveParams{
			DownloadParams: usecase.DownloadParams{
				Symbol:    list[0],
				StartDate: *start,
				EndDate:   *end,
				Interval:  *interval,
				Source:    *source,
			},
			Filename: *filename,
			Path:     dir,
		})
		if err != nil {
			log.Fatalf("download failed: %v", err)
		}
		l.Info("export complete", logger.String("path", path))

	case *combine:
		res, err := uc.DownloadMultiple(ctx, usecase.MultiParams{
			Symbols:   list,
			StartDate: *start,
			EndDate:   *end,
			Interval:  *interval,
			Source:    *source,
			Combine:   true,
		})
		if err != nil {
			log.Fatalf("download failed: %v", err)
		}
		name := *filename
		if name == "" {
			name = fmt.Sprintf("combined_%s_%s.csv", *start, *end)
		}
		if !strings.HasSuffix(name, ".csv") {
			name += ".csv"
		}
		path := filepath.Join(dir, name)
		if err := writeText(path, res.Combined); err != nil {
			log.Fatalf("write combined csv: %v", err)
		}
		l.Info("combined export complete",
			logger.Strings("symbols", list),
			logger.String("path", path))

	default:
		res, err := uc.DownloadMultiple(ctx, usecase.MultiParams{
			Symbols:   list,
			StartDate: *start,
			EndDate:   *end,
			Interval:  *interval,
			Source:    *source,
		})
		if err != nil {
			log.Fatalf("download failed: %v", err)
		}
		failed := 0
		for _, symbol := range res.Batch.Symbols {
			if res.Batch.Failed(symbol) {
				failed++
				l.Warn("symbol skipped", logger.String("symbol", symbol))
				continue
			}
			name := fmt.Sprintf("%s_%s_%s.csv", strings.ToUpper(symbol), *start, *end)
			path := filepath.Join(dir, name)
			if err := writeText(path, *res.Batch.CSV[symbol]); err != nil {
				log.Fatalf("write csv for %s: %v", symbol, err)
			}
			l.Info("export complete", logger.String("symbol", symbol), logger.String("path", path))
		}
		if failed == len(res.Batch.Symbols) {
			os.Exit(1)
		}
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeText(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}
