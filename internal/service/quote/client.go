package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"vnquote/internal/domain/models"
	drepo "vnquote/internal/domain/repository"
	xhttp "vnquote/pkg/http"
)

// defaultUserAgent identifies the module against provider endpoints.
const defaultUserAgent = "vnquote/1.0"

// browserAgents are rotated when random-agent mode is on.
var browserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout for history calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRandomAgent rotates browser user agents per request.
func WithRandomAgent(enabled bool) Option {
	return func(c *Client) { c.randomAgent = enabled }
}

// Client implements the QuoteProvider boundary against plain JSON history
// endpoints, one base URL per data source. Vendor page scraping stays out of
// this module; the endpoint contract is
//
//	GET {base}/history?symbol=...&start=...&end=...&interval=...
//	-> {"fields": [...], "index": [...]?, "data": [[...], ...]}
//
// where index, when present, carries the trading dates as row keys.
type Client struct {
	http        *xhttp.Client
	baseURLs    map[string]string
	timeout     time.Duration
	randomAgent bool
}

// New creates a quote client over the given source -> base URL mapping.
func New(baseURLs map[string]string, opts ...Option) drepo.QuoteProvider {
	c := &Client{
		baseURLs: make(map[string]string, len(baseURLs)),
		timeout:  30 * time.Second,
	}
	for src, u := range baseURLs {
		c.baseURLs[strings.ToUpper(src)] = strings.TrimRight(u, "/")
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout))
	return c
}

type historyResponse struct {
	Fields []string            `json:"fields"`
	Index  []string            `json:"index"`
	Data   [][]json.RawMessage `json:"data"`
}

// History fetches the historical price series for one symbol.
func (c *Client) History(ctx context.Context, req drepo.HistoryRequest) (*models.PriceSeries, error) {
	base, ok := c.baseURLs[strings.ToUpper(req.Source)]
	if !ok {
		return nil, fmt.Errorf("no endpoint configured for source %s", req.Source)
	}

	var resp historyResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		URL:     base + "/history",
		Headers: map[string]string{"User-Agent": c.userAgent()},
		QueryParams: map[string][]string{
			"symbol":   {req.Symbol},
			"start":    {req.Start},
			"end":      {req.End},
			"interval": {req.Interval},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("history %s from %s: %w", req.Symbol, req.Source, err)
	}

	return toSeries(&resp), nil
}

func (c *Client) userAgent() string {
	if c.randomAgent {
		return browserAgents[rand.Intn(len(browserAgents))]
	}
	return defaultUserAgent
}

// toSeries converts a wire response into the tagged series representation.
// Date location resolves to the explicit variant set: an index wins, then a
// "Date" or "time" field, then none.
func toSeries(resp *historyResponse) *models.PriceSeries {
	s := &models.PriceSeries{Fields: resp.Fields, DateLoc: models.DateNone}

	switch {
	case len(resp.Index) > 0:
		s.DateLoc = models.DateInIndex
	case hasField(resp.Fields, "Date"):
		s.DateLoc = models.DateInField
		s.DateField = "Date"
	case hasField(resp.Fields, "time"):
		s.DateLoc = models.DateInField
		s.DateField = "time"
	}

	for i, raw := range resp.Data {
		row := models.SeriesRow{Values: make([]string, 0, len(raw))}
		if s.DateLoc == models.DateInIndex && i < len(resp.Index) {
			row.Key = resp.Index[i]
		}
		for _, cell := range raw {
			row.Values = append(row.Values, cellString(cell))
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// cellString renders one JSON cell. Raw number tokens are kept verbatim so
// provider formatting survives into the CSV output.
func cellString(raw json.RawMessage) string {
	t := strings.TrimSpace(string(raw))
	if t == "" || t == "null" {
		return ""
	}
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return t
}
