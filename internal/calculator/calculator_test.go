package calculator

import (
	"testing"
	"time"

	"OskoFlow/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundStrike(t *testing.T) {
	tests := []struct {
		price float64
		typ   model.OptionType
		want  string
	}{
		{103, model.Call, "105"},
		{15, model.Put, "14"},
		{456.23, model.Call, "465"},
		{456.23, model.Put, "445"},
		{50, model.Call, "52.5"},
		{50, model.Put, "47.5"},
		{100, model.Call, "102.5"},
		{7.89, model.Call, "9"},
	}
	for _, tt := range tests {
		got := RoundStrike(tt.price, tt.typ)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"price %.2f %s: expected %s, got %s", tt.price, tt.typ, tt.want, got)
	}
}

func TestStrikeIncrement(t *testing.T) {
	assert.Equal(t, "5", StrikeIncrement(100.01).String())
	assert.Equal(t, "2.5", StrikeIncrement(100).String())
	assert.Equal(t, "2.5", StrikeIncrement(20.5).String())
	assert.Equal(t, "1", StrikeIncrement(20).String())
}

func TestNextFriday(t *testing.T) {
	loc := time.UTC
	// 2026-10-19 is a Monday.
	mon := time.Date(2026, 10, 19, 15, 4, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 23, 0, 0, 0, 0, loc), NextFriday(mon))

	fri := time.Date(2026, 10, 23, 9, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 30, 0, 0, 0, 0, loc), NextFriday(fri))

	sat := time.Date(2026, 10, 24, 0, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 30, 0, 0, 0, 0, loc), NextFriday(sat))

	thu := time.Date(2026, 12, 31, 12, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, loc), NextFriday(thu))
}

func TestRangePosition(t *testing.T) {
	assert.InDelta(t, 0.623, RangePosition(456.23, 460, 450), 1e-9)
	assert.Equal(t, 0.5, RangePosition(10, 10, 10))
	assert.Less(t, RangePosition(9, 12, 10), 0.0)
	assert.Greater(t, RangePosition(13, 12, 10), 1.0)
}

func TestDailyRange(t *testing.T) {
	assert.InDelta(t, 0.04, DailyRange(104, 100, 100), 1e-9)
	assert.Equal(t, 0.0, DailyRange(104, 100, 0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "8.21", Round2(456.23*0.018).String())
	assert.Equal(t, 7.3, Round2f(456.23*0.016))
}
