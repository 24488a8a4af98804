package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnquote/internal/domain/models"
	drepo "vnquote/internal/domain/repository"
	"vnquote/pkg/retry"
)

var errNetwork = errors.New("connection reset by peer")

// stubProvider serves canned series and scripted failures.
type stubProvider struct {
	failFor   map[string]bool // symbols that always fail
	failFirst int             // fail this many calls before succeeding
	calls     int
	empty     bool
}

func (s *stubProvider) History(_ context.Context, req drepo.HistoryRequest) (*models.PriceSeries, error) {
	s.calls++
	if s.failFor[req.Symbol] || s.calls <= s.failFirst {
		return nil, fmt.Errorf("history %s: %w", req.Symbol, errNetwork)
	}
	if s.empty {
		return &models.PriceSeries{DateLoc: models.DateInIndex}, nil
	}
	return &models.PriceSeries{
		Fields:  []string{"open", "high", "low", "close", "volume"},
		DateLoc: models.DateInIndex,
		Rows: []models.SeriesRow{
			{Key: "2024-12-02", Values: []string{"33.1", "33.9", "32.8", "33.5", "1200500"}},
			{Key: "2024-12-03", Values: []string{"33.5", "34.2", "33.4", "34.0", "980400"}},
			{Key: "2024-12-04", Values: []string{"34.0", "34.4", "33.8", "34.1", "1100200"}},
		},
	}, nil
}

func quickPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, Multiplier: 2.0, MinWait: time.Millisecond, MaxWait: 2 * time.Millisecond}
}

func newService(p drepo.QuoteProvider, attempts int) *DownloadUseCase {
	fetcher := NewRetryingFetcher(p, quickPolicy(attempts), nil, nil)
	return NewDownloadUseCase(fetcher, DownloadOptions{})
}

func TestToCSVProducesCanonicalLayout(t *testing.T) {
	uc := newService(&stubProvider{}, 1)
	out, err := uc.ToCSV(context.Background(), DownloadParams{
		Symbol:    "VCI",
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,ticket,open,high,low,close,volume", lines[0])
	for _, line := range lines[1:] {
		assert.Equal(t, "VCI", strings.Split(line, ",")[1])
	}
}

func TestToCSVPropagatesValidationError(t *testing.T) {
	uc := newService(&stubProvider{}, 1)
	_, err := uc.ToCSV(context.Background(), DownloadParams{
		Symbol:    "VC",
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidSymbol, ve.Kind)
}

func TestToCSVRetriesTransientFailures(t *testing.T) {
	stub := &stubProvider{failFirst: 2}
	uc := newService(stub, 3)
	out, err := uc.ToCSV(context.Background(), DownloadParams{
		Symbol:    "VCI",
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls)
	assert.Contains(t, out, "2024-12-02,VCI")
}

func TestToCSVSurfacesOriginalErrorAfterExhaustion(t *testing.T) {
	stub := &stubProvider{failFirst: 10}
	uc := newService(stub, 2)
	_, err := uc.ToCSV(context.Background(), DownloadParams{
		Symbol:    "VCI",
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNetwork))
	assert.Equal(t, 2, stub.calls)
}

func TestSaveCSVAutoFilename(t *testing.T) {
	dir := t.TempDir()
	uc := newService(&stubProvider{}, 1)
	path, err := uc.SaveCSV(context.Background(), SaveParams{
		DownloadParams: DownloadParams{
			Symbol:    "fpt",
			StartDate: "01-12-2024",
			EndDate:   "05-12-2024",
		},
		Path: dir,
	})
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.Regexp(t, regexp.MustCompile(`^FPT_01-12-2024_05-12-2024_\d{8}_\d{6}\.csv$`), name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,ticket,"))
}

func TestSaveCSVAppendsExtensionAndCreatesDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "daily")
	uc := newService(&stubProvider{}, 1)
	path, err := uc.SaveCSV(context.Background(), SaveParams{
		DownloadParams: DownloadParams{
			Symbol:    "VCI",
			StartDate: "2024-12-01",
			EndDate:   "2024-12-05",
		},
		Filename: "vci_december",
		Path:     dir,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vci_december.csv"), path)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestDownloadMultipleIsolatesFailures(t *testing.T) {
	stub := &stubProvider{failFor: map[string]bool{"HPG": true}}
	uc := newService(stub, 1)
	res, err := uc.DownloadMultiple(context.Background(), MultiParams{
		Symbols:   []string{"VCI", "HPG"},
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Batch)

	assert.Equal(t, []string{"VCI", "HPG"}, res.Batch.Symbols)
	assert.False(t, res.Batch.Failed("VCI"))
	assert.True(t, res.Batch.Failed("HPG"))
	require.NotNil(t, res.Batch.CSV["VCI"])
	assert.Contains(t, *res.Batch.CSV["VCI"], "VCI")
}

func TestDownloadMultipleCombinedSkipsFailedSymbols(t *testing.T) {
	stub := &stubProvider{failFor: map[string]bool{"HPG": true}}
	uc := newService(stub, 1)
	res, err := uc.DownloadMultiple(context.Background(), MultiParams{
		Symbols:   []string{"VCI", "HPG"},
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
		Combine:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, res.Combined, ",VCI,")
	assert.NotContains(t, res.Combined, "HPG")
}

func TestDownloadMultipleCombinedAllFailed(t *testing.T) {
	stub := &stubProvider{failFor: map[string]bool{"VCI": true, "HPG": true}}
	uc := newService(stub, 1)
	_, err := uc.DownloadMultiple(context.Background(), MultiParams{
		Symbols:   []string{"VCI", "HPG"},
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
		Combine:   true,
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, KindNoDataFetched, ve.Kind)
}

func TestDownloadMultipleCombinedSkipsEmptySeries(t *testing.T) {
	stub := &stubProvider{empty: true}
	uc := newService(stub, 1)
	_, err := uc.DownloadMultiple(context.Background(), MultiParams{
		Symbols:   []string{"VCI"},
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
		Combine:   true,
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, KindNoDataFetched, ve.Kind)
}

func TestDownloadMultipleRejectsBadDates(t *testing.T) {
	uc := newService(&stubProvider{}, 1)
	_, err := uc.DownloadMultiple(context.Background(), MultiParams{
		Symbols:   []string{"VCI"},
		StartDate: "bad",
		EndDate:   "2024-12-05",
	})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidDateFormat, ve.Kind)
}

func TestEachFetchGetsItsOwnRetryBudget(t *testing.T) {
	stub := &stubProvider{failFirst: 2} // first symbol burns two retries
	uc := newService(stub, 3)
	res, err := uc.DownloadMultiple(context.Background(), MultiParams{
		Symbols:   []string{"VCI", "FPT"},
		StartDate: "2024-12-01",
		EndDate:   "2024-12-05",
	})
	require.NoError(t, err)
	assert.False(t, res.Batch.Failed("VCI"))
	assert.False(t, res.Batch.Failed("FPT"))
	assert.Equal(t, 4, stub.calls)
}
