package model

import "time"

// Quote is a normalized price/volume snapshot for a ticker.
// Every quote source (live provider or synthetic fallback) returns this shape.
type Quote struct {
	Symbol        string
	Price         float64
	Change        float64
	ChangePercent float64 // percent, e.g. 1.5 means +1.5%
	Volume        int64
	High          float64
	Low           float64
	FetchedAt     time.Time
}

// FactorSet holds the five heuristic sub-scores for one quote.
type FactorSet struct {
	Momentum      float64
	MeanReversion float64
	Volatility    float64
	VolumeProfile float64
	Technicals    float64
}

// Sum returns the unweighted total of all factors.
func (f FactorSet) Sum() float64 {
	return f.Momentum + f.MeanReversion + f.Volatility + f.VolumeProfile + f.Technicals
}

// Score is the output of the factor scorer.
type Score struct {
	Factors       FactorSet
	RawConfidence int // rounded factor sum before clamping
	Confidence    int // RawConfidence clamped to [70,95]
	Type          OptionType
}
