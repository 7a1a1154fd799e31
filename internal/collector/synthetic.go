package collector

import (
	"math"
	"time"

	"OskoFlow/internal/calculator"
	"OskoFlow/internal/model"
	"OskoFlow/internal/random"
)

// basePrices anchors synthetic quotes for the default watchlist.
var basePrices = map[string]float64{
	"SPY": 456.23, "QQQ": 391.45, "IWM": 191.67, "DIA": 351.89, "VOO": 421.34,
	"AAPL": 186.78, "TSLA": 246.91, "NVDA": 476.55, "AMD": 126.23, "MSFT": 376.45,
	"AMZN": 156.67, "GOOGL": 136.89, "META": 336.12, "NFLX": 486.78, "SOFI": 8.67,
	"PLTR": 16.89, "F": 12.34, "RIVN": 18.56, "LCID": 4.23, "NIO": 7.89,
}

// SyntheticGenerator fabricates plausible quotes when every provider fails.
type SyntheticGenerator struct {
	rng random.Source
	now func() time.Time
}

// NewSyntheticGenerator creates a generator drawing from rng.
func NewSyntheticGenerator(rng random.Source) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rng, now: time.Now}
}

// BasePrice returns the anchor price for a known symbol.
func BasePrice(symbol string) (float64, bool) {
	p, ok := basePrices[symbol]
	return p, ok
}

// Generate returns a quote around the symbol's base price. Unknown symbols get a
// random base in [50,450). The drift is long-biased: (u-0.3)*8%, i.e. [-2.4%,+5.6%).
func (g *SyntheticGenerator) Generate(symbol string) *model.Quote {
	base, ok := BasePrice(symbol)
	if !ok {
		base = g.rng.Float64()*400 + 50
	}
	drift := (g.rng.Float64() - 0.3) * 0.08
	volume := int64(g.rng.IntN(20_000_000)) + 5_000_000

	price := calculator.Round2f(base * (1 + drift))
	high := calculator.Round2f(base * (1 + g.rng.Float64()*0.05))
	low := calculator.Round2f(base * (1 - g.rng.Float64()*0.04))
	// price may sit above high, but never more than 5% above it; low never exceeds price.
	high = math.Max(high, math.Ceil(price/1.05*100)/100)
	low = math.Min(low, price)

	return &model.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        calculator.Round2f(base * drift),
		ChangePercent: calculator.Round2f(drift * 100),
		Volume:        volume,
		High:          high,
		Low:           low,
		FetchedAt:     g.now(),
	}
}
