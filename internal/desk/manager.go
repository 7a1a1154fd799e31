// Package desk owns the active recommendation set: it runs refresh cycles over
// the watchlist and serves read-only views of the latest complete set.
package desk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"OskoFlow/internal/collector"
	"OskoFlow/internal/model"
	"OskoFlow/internal/random"
	"OskoFlow/internal/recorder"
	"OskoFlow/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// QuoteFetcher returns a quote for a symbol. collector.Source implements it.
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (*model.Quote, error)
}

// Analyzer scores a quote and builds a recommendation. strategy.Engine implements it.
type Analyzer interface {
	Analyze(symbol string, q *model.Quote) (*model.Recommendation, error)
}

// Options controls refresh behaviour.
type Options struct {
	Watchlist     []string
	SafeTickers   []string
	MaxCandidates int           // shuffled candidates considered per refresh
	Target        int           // stop once this many recommendations are accepted
	MaxSafePlays  int           // cap for synthesized safe plays
	Pacing        time.Duration // delay between candidates; 0 disables
}

// DefaultSafeTickers are the large, liquid names used to synthesize safe plays.
var DefaultSafeTickers = []string{"SPY", "QQQ", "AAPL", "MSFT", "GOOGL"}

// Manager handles refresh cycles and the atomically swapped active set.
type Manager struct {
	quotes   QuoteFetcher
	analyzer Analyzer
	rng      random.Source
	rec      recorder.Recorder
	opts     Options

	refreshMu sync.Mutex
	current   atomic.Pointer[model.RecommendationSet]
}

// NewManager creates a Manager with an empty active set.
func NewManager(quotes QuoteFetcher, analyzer Analyzer, rng random.Source, rec recorder.Recorder, opts Options) *Manager {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 15
	}
	if opts.Target <= 0 {
		opts.Target = 7
	}
	if opts.MaxSafePlays <= 0 {
		opts.MaxSafePlays = 3
	}
	if len(opts.SafeTickers) == 0 {
		opts.SafeTickers = DefaultSafeTickers
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	m := &Manager{quotes: quotes, analyzer: analyzer, rng: rng, rec: rec, opts: opts}
	m.current.Store(&model.RecommendationSet{})
	return m
}

// Current returns the latest complete set. Never nil. Callers must not modify it.
func (m *Manager) Current() *model.RecommendationSet {
	return m.current.Load()
}

// HighConfidence returns recommendations from the current set at or above threshold.
func (m *Manager) HighConfidence(threshold int) []*model.Recommendation {
	var out []*model.Recommendation
	for _, r := range m.Current().Items {
		if r.Confidence >= threshold {
			out = append(out, r)
		}
	}
	return out
}

// EnsureCurrent refreshes when no recommendations are available yet. A caller
// that waited on an in-flight refresh reuses its result when it is non-empty.
func (m *Manager) EnsureCurrent(ctx context.Context) (*model.RecommendationSet, error) {
	if set := m.Current(); set.Len() > 0 {
		return set, nil
	}
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	if set := m.Current(); set.Len() > 0 {
		return set, nil
	}
	return m.refresh(ctx)
}

// Analyze runs fetch, score and build for one symbol.
func (m *Manager) Analyze(ctx context.Context, symbol string) (*model.Recommendation, error) {
	q, err := m.quotes.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%s: %w", symbol, collector.ErrNoDataAvailable)
	}
	return m.analyzer.Analyze(symbol, q)
}

// Refresh builds a new set and replaces the active one. Candidate failures are
// skipped; only context cancellation aborts, in which case the previous set is kept.
func (m *Manager) Refresh(ctx context.Context) (*model.RecommendationSet, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	return m.refresh(ctx)
}

// refresh runs one cycle; the caller holds refreshMu.
func (m *Manager) refresh(ctx context.Context) (*model.RecommendationSet, error) {
	start := time.Now()
	candidates := slices.Clone(m.opts.Watchlist)
	m.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > m.opts.MaxCandidates {
		candidates = candidates[:m.opts.MaxCandidates]
	}

	log.Info().Int("candidates", len(candidates)).Msg("generating recommendations")
	accepted := make([]*model.Recommendation, 0, m.opts.Target)
	for i, symbol := range candidates {
		if len(accepted) >= m.opts.Target {
			break
		}
		if i > 0 {
			if err := m.pace(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := m.Analyze(ctx, symbol)
		if err != nil {
			m.rec.RecordCandidate(classify(err))
			log.Info().Str("symbol", symbol).Err(err).Msg("skipping candidate")
			continue
		}
		m.rec.RecordCandidate(recorder.CandidateAccepted)
		log.Info().Str("symbol", symbol).Int("confidence", rec.Confidence).Str("type", string(rec.Type)).Msg("candidate accepted")
		accepted = append(accepted, rec)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Confidence > accepted[j].Confidence
	})

	set := &model.RecommendationSet{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Items:       accepted,
	}
	m.current.Store(set)

	elapsed := time.Since(start)
	m.rec.RecordRefresh(len(accepted), elapsed)
	log.Info().Str("set_id", set.ID).Int("count", len(accepted)).Dur("elapsed", elapsed).Msg("recommendations generated")
	return set, nil
}

// SafePlays returns recommendations at 100% confidence from the current set. When
// there are none it synthesizes up to MaxSafePlays from the safe tickers and
// reports synthesized=true. Synthesized plays are not stored in the active set.
func (m *Manager) SafePlays(ctx context.Context) (plays []*model.Recommendation, synthesized bool) {
	plays = m.HighConfidence(100)
	if len(plays) > 0 {
		return plays, false
	}

	for _, symbol := range m.opts.SafeTickers {
		if len(plays) >= m.opts.MaxSafePlays {
			break
		}
		if ctx.Err() != nil {
			break
		}
		rec, err := m.Analyze(ctx, symbol)
		if err != nil {
			log.Info().Str("symbol", symbol).Err(err).Msg("skipping safe play")
			continue
		}
		strategy.ForceSafe(rec)
		plays = append(plays, rec)
	}
	return plays, true
}

func (m *Manager) pace(ctx context.Context) error {
	if m.opts.Pacing <= 0 {
		return nil
	}
	t := time.NewTimer(m.opts.Pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, strategy.ErrLowConfidence):
		return recorder.CandidateLowConfidence
	case errors.Is(err, collector.ErrNoDataAvailable):
		return recorder.CandidateNoData
	default:
		return recorder.CandidateError
	}
}
