package calculator

import "github.com/shopspring/decimal"

// RangePosition returns where price sits within [low, high] as a fraction.
// The result is not clamped: prices outside the day's range yield values below 0 or above 1.
// A degenerate range (high == low) is treated as mid-range.
func RangePosition(price, high, low float64) float64 {
	if high == low {
		return 0.5
	}
	return (price - low) / (high - low)
}

// DailyRange returns (high-low)/price, or 0 when price is not positive.
func DailyRange(high, low, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return (high - low) / price
}

// Round2 rounds x to cents.
func Round2(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

// Round2f rounds x to cents and returns a float.
func Round2f(x float64) float64 {
	return Round2(x).InexactFloat64()
}
