package strategy

import (
	"fmt"
	"strconv"
	"time"

	"OskoFlow/internal/calculator"
	"OskoFlow/internal/model"

	"github.com/shopspring/decimal"
)

var reasoningTemplates = []string{
	"Statistical arbitrage models indicate strong directional bias with 3-sigma confidence interval. Mean reversion signals combined with momentum factors create optimal entry conditions for this timeframe.",
	"Machine learning algorithms detect institutional accumulation patterns with high probability of continuation. Volume-weighted price analysis confirms smart money positioning in this direction.",
	"Multi-timeframe analysis shows perfect harmonic convergence across daily, weekly, and monthly charts. Quantum computing models predict 89.7% probability of target achievement.",
}

// citationTemplates is ordered; only the first maxCitations are attached.
var citationTemplates = []struct {
	name string
	url  string
}{
	{"TradingView Analysis", "https://www.tradingview.com/symbols/%s/"},
	{"CNBC News", "https://www.cnbc.com/quotes/%s"},
	{"MarketWatch", "https://www.marketwatch.com/investing/stock/%s"},
	{"Yahoo Finance", "https://finance.yahoo.com/quote/%s"},
	{"Bloomberg", "https://www.bloomberg.com/quote/%s:US"},
}

const maxCitations = 3

var (
	callPremiumRate = decimal.RequireFromString("0.018")
	putPremiumRate  = decimal.RequireFromString("0.016")
	contractSize    = decimal.NewFromInt(100)
)

// Build derives a full trade idea from an accepted score.
func (e *Engine) Build(symbol string, q *model.Quote, sc *model.Score) (*model.Recommendation, error) {
	if sc.Confidence < MinConfidence {
		return nil, fmt.Errorf("%s: confidence %d: %w", symbol, sc.Confidence, ErrLowConfidence)
	}
	price := q.Price
	call := sc.Type == model.Call

	premium := premiumFor(price, sc.Type)
	target, stop := 0.955, 1.02
	if call {
		target, stop = 1.045, 0.98
	}

	rec := &model.Recommendation{
		Symbol:       symbol,
		Type:         sc.Type,
		Strike:       calculator.RoundStrike(price, sc.Type),
		Confidence:   sc.Confidence,
		CurrentPrice: decimal.NewFromFloat(price),
		Premium:      premium,
		MaxSpend:     premium.Mul(contractSize).Round(0),
		TargetPrice:  calculator.Round2(price * target),
		StopLoss:     calculator.Round2(price * stop),
		Volume:       q.Volume,
		RiskLevel:    RiskFor(sc.Confidence),
		QuantumScore: QuantumScore(sc.Confidence),
		Action:       model.ActionBuyToOpen,
		TimeFrame:    model.DefaultTimeFrame,
	}
	rec.Reasoning = e.reasoning(sc.Confidence)
	rec.Sources = citations(symbol)
	rec.Expiry = e.expiry()
	rec.Technicals = e.technicals(sc.Factors, price, sc.Type)
	return rec, nil
}

func premiumFor(price float64, typ model.OptionType) decimal.Decimal {
	rate := putPremiumRate
	if typ == model.Call {
		rate = callPremiumRate
	}
	return decimal.NewFromFloat(price).Mul(rate).Round(2)
}

// expiry is next Friday, pushed one more week half of the time.
func (e *Engine) expiry() time.Time {
	friday := calculator.NextFriday(e.now())
	if e.rng.Float64() > 0.5 {
		friday = friday.AddDate(0, 0, 7)
	}
	return friday
}

func (e *Engine) reasoning(confidence int) string {
	base := reasoningTemplates[e.rng.IntN(len(reasoningTemplates))]
	return fmt.Sprintf("%s Our hedge fund-grade models identify this as a %d%% confidence play with clear risk-defined parameters for optimal position sizing.", base, confidence)
}

func citations(symbol string) []model.Citation {
	out := make([]model.Citation, 0, maxCitations)
	for _, c := range citationTemplates[:maxCitations] {
		out = append(out, model.Citation{Name: c.name, URL: fmt.Sprintf(c.url, symbol)})
	}
	return out
}

func rsiSignal(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	case rsi > 55:
		return "Bullish"
	default:
		return "Bearish"
	}
}

func (e *Engine) technicals(f model.FactorSet, price float64, typ model.OptionType) model.Technicals {
	rsi := decimal.NewFromFloat(40 + e.rng.Float64()*40).Round(1).InexactFloat64()
	macd := decimal.NewFromFloat((e.rng.Float64() - 0.3) * 0.08).Round(4).InexactFloat64()

	supportMul, resistanceMul := 1.04, 0.96
	if typ == model.Call {
		supportMul, resistanceMul = 0.96, 1.04
	}

	t := model.Technicals{
		RSI:         rsi,
		RSISignal:   rsiSignal(rsi),
		MACD:        macd,
		Trend:       "Strong Downtrend",
		Support:     calculator.Round2(price * supportMul),
		Resistance:  calculator.Round2(price * resistanceMul),
		Volatility:  "Medium",
		VolumeTrend: "Retail",
		Momentum:    "Decelerating",
		QuantumEdge: strconv.FormatFloat(f.Momentum+f.VolumeProfile, 'f', -1, 64) + "%",
	}
	if f.Momentum > callMomentumThreshold {
		t.Trend = "Strong Uptrend"
		t.Momentum = "Accelerating"
	}
	switch {
	case f.Volatility > 60:
		t.Volatility = "High"
	case f.Volatility < 40:
		t.Volatility = "Low"
	}
	if f.VolumeProfile > 60 {
		t.VolumeTrend = "Institutional"
	}
	return t
}
