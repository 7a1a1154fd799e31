package collector

import (
	"context"
	"fmt"
	"sync"

	"OskoFlow/internal/model"
	"OskoFlow/internal/recorder"

	"github.com/rs/zerolog/log"
)

// Source obtains quotes from a primary and a secondary provider, falling back
// to synthetic data when both are unavailable.
type Source struct {
	Primary   QuoteProvider
	Secondary QuoteProvider
	Synthetic *SyntheticGenerator
	Recorder  recorder.Recorder
}

// NewSource creates a Source. Either provider may be nil.
func NewSource(primary, secondary QuoteProvider, synth *SyntheticGenerator, rec recorder.Recorder) *Source {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Source{Primary: primary, Secondary: secondary, Synthetic: synth, Recorder: rec}
}

// Fetch queries both providers concurrently and waits for both to settle before
// choosing: primary first, then secondary, then a synthetic quote. Provider
// failures are never returned; ErrNoDataAvailable only appears if the synthetic
// quote itself is unusable.
func (s *Source) Fetch(ctx context.Context, symbol string) (*model.Quote, error) {
	providers := []QuoteProvider{s.Primary, s.Secondary}
	results := make([]*model.Quote, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		if p == nil {
			continue
		}
		wg.Add(1)
		go func(i int, p QuoteProvider) {
			defer wg.Done()
			q, err := p.FetchQuote(ctx, symbol)
			switch {
			case err != nil:
				log.Debug().Err(err).Str("provider", p.Name()).Str("symbol", symbol).Msg("provider unavailable")
				s.Recorder.RecordProvider(p.Name(), recorder.OutcomeError)
			case !wellFormed(q):
				log.Debug().Str("provider", p.Name()).Str("symbol", symbol).Msg("provider returned malformed quote")
				s.Recorder.RecordProvider(p.Name(), recorder.OutcomeMalformed)
			default:
				s.Recorder.RecordProvider(p.Name(), recorder.OutcomeOK)
				results[i] = q
			}
		}(i, p)
	}
	wg.Wait()

	for i, q := range results {
		if q != nil {
			log.Debug().Str("provider", providers[i].Name()).Str("symbol", symbol).Float64("price", q.Price).Msg("live quote selected")
			return q, nil
		}
	}

	log.Info().Str("symbol", symbol).Msg("all providers failed, using synthetic quote")
	s.Recorder.RecordProvider("synthetic", recorder.OutcomeFallback)
	if s.Synthetic == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoDataAvailable)
	}
	q := s.Synthetic.Generate(symbol)
	if !wellFormed(q) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoDataAvailable)
	}
	return q, nil
}
