package strategy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"OskoFlow/internal/model"
	"OskoFlow/internal/random"
)

const (
	MinConfidence = 70
	MaxConfidence = 95

	// callMomentumThreshold: momentum above this is a CALL, otherwise a PUT.
	callMomentumThreshold = 60
)

// ErrLowConfidence rejects a candidate whose raw factor sum is below MinConfidence.
var ErrLowConfidence = errors.New("confidence too low")

// Engine scores quotes and turns accepted scores into recommendations.
type Engine struct {
	rng random.Source
	now func() time.Time
}

// NewEngine creates an Engine. Expiry dates are computed in loc (UTC when nil).
func NewEngine(rng random.Source, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		rng: rng,
		now: func() time.Time { return time.Now().In(loc) },
	}
}

// roundHalfUp rounds .5 toward +Inf.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// clampConfidence rounds the factor sum and clamps it into [MinConfidence, MaxConfidence].
func clampConfidence(sum float64) (raw, confidence int) {
	raw = roundHalfUp(sum)
	return raw, min(MaxConfidence, max(MinConfidence, raw))
}

// Score computes the factor set, the clamped confidence and the direction.
// The clamp to [70,95] is always applied, but the rejection test uses the
// pre-clamp value: a raw 65 is clamped to 70 and still rejected.
func (e *Engine) Score(q *model.Quote) (*model.Score, error) {
	factors := computeFactors(q, e.rng)
	raw, confidence := clampConfidence(factors.Sum())

	typ := model.Put
	if factors.Momentum > callMomentumThreshold {
		typ = model.Call
	}

	sc := &model.Score{
		Factors:       factors,
		RawConfidence: raw,
		Confidence:    confidence,
		Type:          typ,
	}
	if raw < MinConfidence {
		return sc, fmt.Errorf("%s: raw confidence %d: %w", q.Symbol, raw, ErrLowConfidence)
	}
	return sc, nil
}

// Analyze scores q and builds a recommendation for symbol.
func (e *Engine) Analyze(symbol string, q *model.Quote) (*model.Recommendation, error) {
	sc, err := e.Score(q)
	if err != nil {
		return nil, err
	}
	return e.Build(symbol, q, sc)
}

// RiskFor maps confidence to a risk label.
func RiskFor(confidence int) model.RiskLevel {
	switch {
	case confidence > 85:
		return model.RiskLow
	case confidence > 75:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// QuantumScore is the display score, confidence+15 out of 100. It is not clamped.
func QuantumScore(confidence int) string {
	return fmt.Sprintf("%d/100", confidence+15)
}

// ForceSafe overrides a recommendation to maximal confidence for the safe-plays view.
func ForceSafe(rec *model.Recommendation) {
	rec.Confidence = 100
	rec.QuantumScore = "100/100"
	rec.RiskLevel = model.RiskZero
}
