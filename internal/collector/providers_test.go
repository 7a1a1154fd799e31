package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphaPayload = `{
  "Global Quote": {
    "01. symbol": "SPY",
    "02. open": "452.10",
    "03. high": "460.00",
    "04. low": "450.00",
    "05. price": "456.23",
    "06. volume": "12000000",
    "07. latest trading day": "2026-10-16",
    "08. previous close": "449.49",
    "09. change": "6.74",
    "10. change percent": "1.5000%"
  }
}`

const yahooPayload = `{
  "chart": {
    "result": [{
      "meta": {
        "symbol": "SPY",
        "regularMarketPrice": 456.23,
        "regularMarketVolume": 12000000,
        "regularMarketDayHigh": 460.0,
        "regularMarketDayLow": 450.0,
        "previousClose": 449.49,
        "chartPreviousClose": 449.0
      }
    }],
    "error": null
  }
}`

func TestAlphaVantageProvider_FetchQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		assert.Equal(t, "demo", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(alphaPayload))
	}))
	defer server.Close()

	p := NewAlphaVantageProvider(server.URL, "demo", "", 5*time.Second)
	q, err := p.FetchQuote(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, "SPY", q.Symbol)
	assert.Equal(t, 456.23, q.Price)
	assert.Equal(t, 1.5, q.ChangePercent)
	assert.Equal(t, 6.84, q.Change)
	assert.Equal(t, int64(12000000), q.Volume)
	assert.Equal(t, 460.0, q.High)
	assert.Equal(t, 450.0, q.Low)
}

func TestAlphaVantageProvider_ThrottledIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
	}))
	defer server.Close()

	p := NewAlphaVantageProvider(server.URL, "demo", "", 5*time.Second)
	_, err := p.FetchQuote(context.Background(), "SPY")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedQuote))
}

func TestAlphaVantageProvider_BadPrice(t *testing.T) {
	_, err := parseGlobalQuote("SPY", map[string]string{"05. price": "n/a"})
	assert.ErrorIs(t, err, ErrMalformedQuote)
}

func TestYahooProvider_FetchQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Write([]byte(yahooPayload))
	}))
	defer server.Close()

	p := NewYahooProvider(server.URL, "", 5*time.Second)
	q, err := p.FetchQuote(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 456.23, q.Price)
	assert.Equal(t, 1.5, q.ChangePercent)
	assert.Equal(t, int64(12000000), q.Volume)
	assert.Equal(t, 460.0, q.High)
	assert.Equal(t, 450.0, q.Low)
}

func TestYahooProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	p := NewYahooProvider(server.URL, "", 5*time.Second)
	_, err := p.FetchQuote(context.Background(), "XXXX")
	assert.Error(t, err)
}

func TestYahooProvider_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewYahooProvider(server.URL, "", 5*time.Second)
	_, err := p.FetchQuote(context.Background(), "SPY")
	assert.Error(t, err)
}

func TestParseChartMeta_FallsBackToChartPreviousClose(t *testing.T) {
	q, err := parseChartMeta("F", &yahooMeta{RegularMarketPrice: 12.6, ChartPreviousClose: 12.0, RegularMarketDayHigh: 12.7, RegularMarketDayLow: 11.9})
	require.NoError(t, err)
	assert.Equal(t, 5.0, q.ChangePercent)
	assert.Equal(t, 0.63, q.Change)
}

func TestAlphaVantage_TransportErrorOmitsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	p := NewAlphaVantageProvider(base, "SECRETKEY123", "", time.Second)
	_, err := p.FetchQuote(context.Background(), "SPY")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.NotContains(t, err.Error(), "apikey")

	guarded := Guard(p, GuardOptions{Timeout: time.Second})
	_, err = guarded.FetchQuote(context.Background(), "SPY")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestRedactURL(t *testing.T) {
	cause := errors.New("boom")
	err := redactURL(&url.Error{Op: "Get", URL: "http://x/query?apikey=K", Err: cause})
	assert.Equal(t, "Get request: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Same(t, cause, redactURL(cause))
}
