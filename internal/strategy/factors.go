package strategy

import (
	"math"

	"OskoFlow/internal/calculator"
	"OskoFlow/internal/model"
	"OskoFlow/internal/random"
)

// scoreMomentum rewards large moves, with an extra bump on heavy volume.
// Range: [0,100].
func scoreMomentum(changePercent float64, volume int64) float64 {
	score := 50.0
	switch {
	case changePercent > 2:
		score += 25
	case changePercent > 1:
		score += 15
	case changePercent < -2:
		score -= 25
	case changePercent < -1:
		score -= 15
	}

	if volume > 10_000_000 {
		if math.Abs(changePercent) > 1 {
			score += 20
		} else {
			score += 10
		}
	}
	return math.Max(0, math.Min(100, score))
}

// scoreMeanReversion is the distance of price from the middle of the day's range,
// in percentage points. Not clamped.
func scoreMeanReversion(price, high, low float64) float64 {
	position := calculator.RangePosition(price, high, low)
	return math.Abs(50 - position*100)
}

// scoreVolatility buckets the intraday range relative to price.
func scoreVolatility(high, low, price float64) float64 {
	if price <= 0 {
		return 50
	}
	dailyRange := calculator.DailyRange(high, low, price)
	switch {
	case dailyRange > 0.03:
		return 70
	case dailyRange < 0.01:
		return 30
	default:
		return 50
	}
}

func scoreVolumeProfile(volume int64) float64 {
	switch {
	case volume > 15_000_000:
		return 80
	case volume > 8_000_000:
		return 60
	case volume > 3_000_000:
		return 40
	default:
		return 20
	}
}

// scoreTechnicals stands in for an indicator bundle that is not computed: [40,80).
func scoreTechnicals(rng random.Source) float64 {
	return 40 + rng.Float64()*40
}

// computeFactors evaluates all five factors for q.
func computeFactors(q *model.Quote, rng random.Source) model.FactorSet {
	return model.FactorSet{
		Momentum:      scoreMomentum(q.ChangePercent, q.Volume),
		MeanReversion: scoreMeanReversion(q.Price, q.High, q.Low),
		Volatility:    scoreVolatility(q.High, q.Low, q.Price),
		VolumeProfile: scoreVolumeProfile(q.Volume),
		Technicals:    scoreTechnicals(rng),
	}
}
