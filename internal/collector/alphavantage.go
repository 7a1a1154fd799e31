package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"OskoFlow/internal/model"
)

// AlphaVantageProvider implements QuoteProvider using the Alpha Vantage GLOBAL_QUOTE endpoint.
type AlphaVantageProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageProvider creates a provider with optional proxy support.
func NewAlphaVantageProvider(baseURL, apiKey, proxyURL string, timeout time.Duration) *AlphaVantageProvider {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co"
	}
	return &AlphaVantageProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

// avResponse is the GLOBAL_QUOTE payload. Throttled requests come back with
// 200 and a Note/Information field instead of the quote object.
type avResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	Information string            `json:"Information"`
}

func (p *AlphaVantageProvider) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		p.BaseURL, url.QueryEscape(symbol), url.QueryEscape(p.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", redactURL(err))
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", redactURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var av avResponse
	if err := json.Unmarshal(body, &av); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if len(av.GlobalQuote) == 0 {
		msg := av.Note
		if msg == "" {
			msg = av.Information
		}
		return nil, fmt.Errorf("alphavantage: %w: empty global quote %s", ErrMalformedQuote, msg)
	}
	return parseGlobalQuote(symbol, av.GlobalQuote)
}

func parseGlobalQuote(symbol string, gq map[string]string) (*model.Quote, error) {
	price, err := strconv.ParseFloat(gq["05. price"], 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("alphavantage: %w: price %q", ErrMalformedQuote, gq["05. price"])
	}
	volume, err := strconv.ParseInt(gq["06. volume"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w: volume %q", ErrMalformedQuote, gq["06. volume"])
	}
	high, err := strconv.ParseFloat(gq["03. high"], 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w: high %q", ErrMalformedQuote, gq["03. high"])
	}
	low, err := strconv.ParseFloat(gq["04. low"], 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w: low %q", ErrMalformedQuote, gq["04. low"])
	}
	changePercent, err := parsePercent(gq["10. change percent"])
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w: change percent %q", ErrMalformedQuote, gq["10. change percent"])
	}
	return normalize(symbol, price, changePercent, volume, high, low), nil
}

// parsePercent parses "1.2345%" into 1.2345.
func parsePercent(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
}
