package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"KYCrypto/internal/model"
)

// HTTPFetcher implements Fetcher against the market-data REST endpoint.
type HTTPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPFetcher creates a new fetcher with optional proxy support.
func NewHTTPFetcher(baseURL, apiKey, proxyURL string) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// marketRow is the expected JSON shape from the market-data API.
type marketRow struct {
	Name             string  `json:"name"`
	MarketCap        float64 `json:"marketCap"`
	Volume           float64 `json:"volume"`
	PercentChange24h float64 `json:"percentChange24h"`
}

func (f *HTTPFetcher) FetchMarkets(ctx context.Context, names []string) ([]model.MarketQuote, error) {
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = strings.ToLower(n)
	}
	endpoint := fmt.Sprintf("%s?ids=%s", f.BaseURL, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch markets: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rows []marketRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	quotes := make([]model.MarketQuote, 0, len(rows))
	for _, r := range rows {
		if r.Name == "" {
			continue
		}
		quotes = append(quotes, model.MarketQuote{
			Name:             r.Name,
			MarketCap:        FormatUSD(r.MarketCap),
			Volume:           FormatUSD(r.Volume),
			PercentChange24h: r.PercentChange24h,
		})
	}
	return quotes, nil
}

// FormatUSD renders v the way the allocation table shows money, e.g. "$1.2T", "$130M".
func FormatUSD(v float64) string {
	if v <= 0 {
		return model.NotAvailable
	}
	scaled, prefix := humanize.ComputeSI(v)
	switch prefix {
	case "G":
		prefix = "B"
	case "k":
		prefix = "K"
	}
	return "$" + humanize.FtoaWithDigits(scaled, 1) + prefix
}
