package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"OskoFlow/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "")
	n.BaseURL = url
	n.RetryBase = time.Millisecond
	return n
}

func TestSendTo_PostsHTMLMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendTo(context.Background(), "-10042", "<b>hi</b>")
	require.NoError(t, err)
	assert.Equal(t, "-10042", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendTo_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendTo(context.Background(), "1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	require.NoError(t, n.SendWithRetry(context.Background(), "1", "x", 3))
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-10)
	err := n.SendWithRetry(context.Background(), "1", "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
		name string
		args []string
	}{
		{"!daily", true, "daily", []string{}},
		{"  !DAILY  ", true, "daily", []string{}},
		{"/safe@OskoFlowBot", true, "safe", []string{}},
		{"/setchannel now", true, "setchannel", []string{"now"}},
		{"daily", false, "", nil},
		{"!", false, "", nil},
		{"/@bot", false, "", nil},
		{"", false, "", nil},
	}
	for _, tt := range tests {
		cmd, ok := ParseCommand(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		if tt.ok {
			assert.Equal(t, tt.name, cmd.Name, tt.text)
			assert.Equal(t, tt.args, cmd.Args, tt.text)
		}
	}
}

func TestStartPolling_DeliversCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		if r.URL.Query().Get("offset") != "0" {
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":[
			{"update_id":7,"message":{"text":"hello","from":{"id":1},"chat":{"id":-5}}},
			{"update_id":8,"message":{"text":"!safe","from":{"id":99},"chat":{"id":-5}}}
		]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []Command
	newTestNotifier(srv.URL).StartPolling(ctx, func(_ context.Context, cmd Command) {
		got = append(got, cmd)
		cancel()
	})

	require.Len(t, got, 1)
	assert.Equal(t, Command{Name: "safe", Args: []string{}, UserID: 99, ChatID: "-5"}, got[0])
}

func sampleRecommendation() *model.Recommendation {
	return &model.Recommendation{
		Symbol:       "SPY",
		Type:         model.Call,
		Strike:       decimal.NewFromInt(465),
		Expiry:       time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC),
		Confidence:   95,
		CurrentPrice: decimal.NewFromFloat(456.2),
		Premium:      decimal.NewFromFloat(8.21),
		MaxSpend:     decimal.NewFromInt(821),
		TargetPrice:  decimal.NewFromFloat(476.76),
		StopLoss:     decimal.NewFromFloat(447.11),
		Volume:       45_200_000,
		RiskLevel:    model.RiskLow,
		QuantumScore: "110/100",
		Action:       model.ActionBuyToOpen,
		TimeFrame:    model.DefaultTimeFrame,
		Reasoning:    "Options flow & momentum align.",
		Sources:      []model.Citation{{Name: "TradingView"}, {Name: "CNBC"}},
		Technicals:   model.Technicals{RSI: 60, RSISignal: "Bullish", Trend: "Strong Uptrend", QuantumEdge: "145%"},
	}
}

func TestFormatCard(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	card := FormatCard(sampleRecommendation(), 2, 7, now)

	for _, want := range []string{
		"🟢 <b>SPY CALL • 95% Quantum Confidence</b>",
		"Stock Price: $456.20",
		"Premium: $8.21",
		"Max Cost: $821",
		"Strike: $465",
		"Expiry: 2026-10-30",
		"Volume: 45.2M",
		"Action: BUY TO OPEN",
		"Risk Level: LOW",
		"Quantum Score: 110/100",
		"RSI: 60 Bullish",
		"Options flow &amp; momentum align.",
		"TradingView • CNBC",
		"Play 2 of 7 • 09:30:00",
	} {
		assert.Contains(t, card, want)
	}

	rec := sampleRecommendation()
	rec.Type = model.Put
	assert.True(t, strings.HasPrefix(FormatCard(rec, 1, 1, now), "🔴"))
}

func TestFormatSafeCard(t *testing.T) {
	rec := sampleRecommendation()
	rec.Confidence = 100
	rec.RiskLevel = model.RiskZero
	card := FormatSafeCard(rec, 1)
	assert.Contains(t, card, "SPY CALL • 100% QUANTUM CONFIDENCE")
	assert.Contains(t, card, "Risk Level: ZERO")
	assert.Contains(t, card, "Safe Play 1 • Zero Risk Identified")
}

func TestFormatHeaderAndHelp(t *testing.T) {
	header := FormatDailyHeader(7, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, header, "2026-10-19")
	assert.Contains(t, header, "7 High-Probability Plays")

	help := FormatHelp()
	for _, c := range []string{"!daily", "!refresh", "!safe", "!setchannel", "!help"} {
		assert.Contains(t, help, c)
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "SPY & QQQ bold", PlainText("<b>SPY</b> &amp; QQQ <i>bold</i>"))
}

func TestTransportErrorsOmitBotToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	n := NewTelegramNotifier("123:SECRETTOKEN", "")
	n.BaseURL = base

	err := n.SendTo(context.Background(), "1", "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETTOKEN")

	_, err = n.getUpdates(context.Background(), n.pollClient(), 0)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETTOKEN")
}

func TestPollClientUsesConfiguredProxy(t *testing.T) {
	n := NewTelegramNotifier("T", "http://proxy.internal:3128")
	client := n.pollClient()
	assert.Equal(t, 35*time.Second, client.Timeout)
	assert.Same(t, n.Client.Transport, client.Transport)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	req := httptest.NewRequest(http.MethodGet, "https://api.telegram.org/botT/getUpdates", nil)
	proxy, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal:3128", proxy.Host)
}

func TestFormatCard_PricesKeepTwoDecimals(t *testing.T) {
	rec := sampleRecommendation()
	rec.Premium = decimal.NewFromFloat(8.2)
	rec.TargetPrice = decimal.NewFromFloat(458.5)
	rec.StopLoss = decimal.NewFromInt(447)
	rec.Technicals.Support = decimal.NewFromFloat(437.9)
	rec.Technicals.Resistance = decimal.NewFromFloat(474.4)

	card := FormatCard(rec, 1, 7, time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC))
	for _, want := range []string{
		"Premium: $8.20",
		"Target: $458.50",
		"Stop: $447.00",
		"Support: $437.90",
		"Resistance: $474.40",
	} {
		assert.Contains(t, card, want)
	}
	assert.Contains(t, FormatSafeCard(rec, 1), "Target: $458.50")
}
