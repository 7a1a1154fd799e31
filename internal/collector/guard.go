package collector

import (
	"context"
	"fmt"
	"time"

	"OskoFlow/internal/model"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// GuardOptions configures the protection wrapped around a provider.
type GuardOptions struct {
	Timeout    time.Duration
	RatePerSec float64 // <= 0 disables rate limiting
	Burst      int
}

// GuardedProvider wraps a QuoteProvider with a rate limiter, a per-call timeout
// and a circuit breaker. Every failure surfaces as ErrProviderUnavailable.
type GuardedProvider struct {
	inner   QuoteProvider
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
}

// Guard wraps p according to opts.
func Guard(p QuoteProvider, opts GuardOptions) *GuardedProvider {
	st := gobreaker.Settings{Name: p.Name()}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
	}

	g := &GuardedProvider{
		inner:   p,
		breaker: gobreaker.NewCircuitBreaker(st),
		timeout: opts.Timeout,
	}
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return g
}

func (g *GuardedProvider) Name() string { return g.inner.Name() }

// State reports the breaker state, mostly for logs and tests.
func (g *GuardedProvider) State() gobreaker.State { return g.breaker.State() }

func (g *GuardedProvider) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", g.Name(), ErrProviderUnavailable, err)
		}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.FetchQuote(ctx, symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", g.Name(), ErrProviderUnavailable, err)
	}
	return res.(*model.Quote), nil
}
