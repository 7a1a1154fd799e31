package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"OskoFlow/internal/calculator"
	"OskoFlow/internal/model"
)

var (
	// ErrProviderUnavailable marks a provider call that failed for any reason.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMalformedQuote marks a provider payload that could not be normalized.
	ErrMalformedQuote = errors.New("malformed quote payload")
	// ErrNoDataAvailable means neither the providers nor the synthetic fallback produced a quote.
	ErrNoDataAvailable = errors.New("no data available")
)

// QuoteProvider fetches a single quote from an external data provider and
// normalizes its payload into a model.Quote.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}

// redactURL drops the request URL from transport errors so query-string
// credentials never reach logs. The cause stays wrapped for errors.Is.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", ue.Op, ue.Err)
	}
	return err
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// normalize builds a Quote from provider fields. Change is derived from the
// percentage so every provider reports it the same way.
func normalize(symbol string, price, changePercent float64, volume int64, high, low float64) *model.Quote {
	return &model.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        calculator.Round2f(price * changePercent / 100),
		ChangePercent: changePercent,
		Volume:        volume,
		High:          high,
		Low:           low,
		FetchedAt:     time.Now(),
	}
}

func wellFormed(q *model.Quote) bool {
	if q == nil {
		return false
	}
	for _, v := range []float64{q.Price, q.High, q.Low, q.ChangePercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return q.Price > 0 && q.Volume >= 0
}
