package calculator

import (
	"time"

	"OskoFlow/internal/model"

	"github.com/shopspring/decimal"
)

var (
	callStrikeFactor = decimal.RequireFromString("1.015")
	putStrikeFactor  = decimal.RequireFromString("0.985")
)

// StrikeIncrement returns the listed strike spacing for an underlying price.
func StrikeIncrement(price float64) decimal.Decimal {
	switch {
	case price > 100:
		return decimal.NewFromInt(5)
	case price > 20:
		return decimal.RequireFromString("2.5")
	default:
		return decimal.NewFromInt(1)
	}
}

// RoundStrike picks a slightly out-of-the-money strike: 1.5% above price rounded up
// for calls, 1.5% below price rounded down for puts.
func RoundStrike(price float64, typ model.OptionType) decimal.Decimal {
	inc := StrikeIncrement(price)
	p := decimal.NewFromFloat(price)
	if typ == model.Call {
		return p.Mul(callStrikeFactor).Div(inc).Ceil().Mul(inc)
	}
	return p.Mul(putStrikeFactor).Div(inc).Floor().Mul(inc)
}

// NextFriday returns midnight of the first Friday strictly after t's calendar day.
func NextFriday(t time.Time) time.Time {
	days := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, t.Location())
}
