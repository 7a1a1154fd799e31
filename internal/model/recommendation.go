package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType is the direction of the contract.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// RiskLevel is derived from confidence. RiskZero is only used by safe plays.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
	RiskZero   RiskLevel = "ZERO"
)

const (
	ActionBuyToOpen  = "BUY TO OPEN"
	DefaultTimeFrame = "1-2 WEEKS"
)

// Technicals is the display-only indicator block attached to a recommendation.
type Technicals struct {
	RSI         float64
	RSISignal   string
	MACD        float64
	Trend       string
	Support     decimal.Decimal
	Resistance  decimal.Decimal
	Volatility  string
	VolumeTrend string
	Momentum    string
	QuantumEdge string
}

// Citation is a named link attached to the reasoning text.
type Citation struct {
	Name string
	URL  string
}

// Recommendation is a fully specified synthetic trade idea for one ticker.
type Recommendation struct {
	Symbol       string
	Type         OptionType
	Strike       decimal.Decimal
	Expiry       time.Time
	Confidence   int
	CurrentPrice decimal.Decimal
	Premium      decimal.Decimal
	MaxSpend     decimal.Decimal
	TargetPrice  decimal.Decimal
	StopLoss     decimal.Decimal
	Volume       int64
	RiskLevel    RiskLevel
	QuantumScore string
	Action       string
	TimeFrame    string
	Reasoning    string
	Sources      []Citation
	Technicals   Technicals
}

// SourceLine joins the citation names with the display separator.
func (r *Recommendation) SourceLine() string {
	names := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		names[i] = s.Name
	}
	return strings.Join(names, " • ")
}

// RecommendationSet is one generation cycle's output, ordered by confidence descending.
type RecommendationSet struct {
	ID          string
	GeneratedAt time.Time
	Items       []*Recommendation
}

// Len returns the number of recommendations; safe on a nil set.
func (s *RecommendationSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}
