package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"OskoFlow/internal/calculator"
	"OskoFlow/internal/model"
)

// YahooProvider implements QuoteProvider using the Yahoo Finance chart API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(baseURL, proxyURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"BRK.B": "BRK-B",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the subset of the chart response we read: the meta block of the first result.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta *yahooMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooMeta struct {
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	PreviousClose        float64 `json:"previousClose"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
}

func (p *YahooProvider) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s", p.BaseURL, url.PathEscape(p.yahooSymbol(symbol)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", redactURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta == nil {
		return nil, fmt.Errorf("yahoo: %w: no meta returned", ErrMalformedQuote)
	}
	return parseChartMeta(symbol, chart.Chart.Result[0].Meta)
}

func parseChartMeta(symbol string, m *yahooMeta) (*model.Quote, error) {
	if m.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("yahoo: %w: price %v", ErrMalformedQuote, m.RegularMarketPrice)
	}
	prev := m.PreviousClose
	if prev <= 0 {
		prev = m.ChartPreviousClose
	}
	var changePercent float64
	if prev > 0 {
		changePercent = calculator.Round2f((m.RegularMarketPrice - prev) / prev * 100)
	}
	return normalize(symbol, m.RegularMarketPrice, changePercent, m.RegularMarketVolume,
		m.RegularMarketDayHigh, m.RegularMarketDayLow), nil
}
