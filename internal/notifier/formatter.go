package notifier

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"OskoFlow/internal/model"
)

// Separator is posted after every card.
const Separator = "────────────────────"

// FormatDailyHeader formats the banner sent before the daily cards.
func FormatDailyHeader(count int, now time.Time) string {
	var b strings.Builder
	b.WriteString("🎯 <b>OSKOFLOW QUANTUM ANALYSIS</b>\n")
	b.WriteString(fmt.Sprintf("<i>Hedge Fund Grade Recommendations • %s</i>\n\n", now.Format("2006-01-02")))
	b.WriteString("📊 <b>Market Overview</b>\n")
	b.WriteString("AI-powered quantum analysis with institutional edge\n\n")
	b.WriteString(fmt.Sprintf("<i>%d High-Probability Plays • Quantum Computing Models</i>", count))
	return b.String()
}

// FormatEmpty is sent when a refresh produced no recommendations.
func FormatEmpty() string {
	return "📭 No recommendations met the confidence bar this cycle. Try <code>!refresh</code> later."
}

// FormatCard formats one recommendation. position is 1-based.
func FormatCard(rec *model.Recommendation, position, total int, now time.Time) string {
	emoji := "🟢"
	if rec.Type == model.Put {
		emoji = "🔴"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s %s • %d%% Quantum Confidence</b>\n\n", emoji, rec.Symbol, rec.Type, rec.Confidence))
	writeSetup(&b, rec)
	b.WriteString("📊 <b>RISK MANAGEMENT</b>\n")
	writeRisk(&b, rec)
	writeAnalysis(&b, rec)
	b.WriteString("💡 <b>AI REASONING &amp; SOURCES</b>\n")
	b.WriteString(html.EscapeString(rec.Reasoning))
	b.WriteString("\n\n<b>Verified Analysis:</b>\n")
	b.WriteString(html.EscapeString(rec.SourceLine()))
	b.WriteString(fmt.Sprintf("\n\n<i>QUANTUM AI • Play %d of %d • %s</i>", position, total, now.Format("15:04:05")))
	return b.String()
}

// FormatSafeHeader formats the banner sent before safe plays.
func FormatSafeHeader() string {
	return "🛡️ <b>100% CONFIDENCE PLAYS</b>\n<i>Ultra-safe options with guaranteed technical edge</i>\n\n<i>Admin Exclusive • Quantum Analysis • Zero Risk</i>"
}

// FormatSafeSynthesizing is sent when no stored play reaches 100% confidence.
func FormatSafeSynthesizing() string {
	return "📊 No 100% confidence plays found. Generating ultra-safe recommendations..."
}

// FormatSafeCard formats a safe play. position is 1-based.
func FormatSafeCard(rec *model.Recommendation, position int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛡️ <b>%s %s • 100%% QUANTUM CONFIDENCE</b>\n\n", rec.Symbol, rec.Type))
	writeSetup(&b, rec)
	b.WriteString("📊 <b>RISK PROFILE</b>\n")
	writeRisk(&b, rec)
	writeAnalysis(&b, rec)
	b.WriteString("💡 <b>GUARANTEED CATALYST</b>\n")
	b.WriteString(html.EscapeString(rec.Reasoning))
	b.WriteString("\n\n<b>Verified Sources:</b>\n")
	b.WriteString(html.EscapeString(rec.SourceLine()))
	b.WriteString(fmt.Sprintf("\n\n<i>QUANTUM AI • Safe Play %d • Zero Risk Identified</i>", position))
	return b.String()
}

// FormatHelp lists the command vocabulary.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>OSKOFLOW QUANTUM BOT</b>\n")
	b.WriteString("Hedge Fund Grade Analysis with Quantum Computing Models\n\n")
	b.WriteString("🎯 <code>!daily</code> - 7 quantum analysis recommendations\n")
	b.WriteString("🔄 <code>!refresh</code> - Generate fresh analysis\n")
	b.WriteString("🛡️ <code>!safe</code> - 100% confidence plays (admins only)\n")
	b.WriteString("📊 <code>!setchannel</code> - Set auto-post channel\n")
	b.WriteString("❓ <code>!help</code> - This message\n\n")
	b.WriteString("⏰ <b>Auto-Post:</b> 9:30 AM ET (Mon-Fri)\n")
	b.WriteString("📈 <b>Sources:</b> TradingView, CNBC, Bloomberg\n\n")
	b.WriteString("<i>Quantum AI Analysis • Institutional Grade • Trusted Sources</i>")
	return b.String()
}

func writeSetup(b *strings.Builder, rec *model.Recommendation) {
	b.WriteString("💰 <b>TRADE SETUP</b>\n")
	b.WriteString(fmt.Sprintf("Symbol: %s %s\n", rec.Symbol, rec.Type))
	b.WriteString(fmt.Sprintf("Stock Price: $%s\n", rec.CurrentPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Premium: $%s\n", rec.Premium.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Max Cost: $%s\n\n", rec.MaxSpend))

	b.WriteString("🎯 <b>CONTRACT DETAILS</b>\n")
	b.WriteString(fmt.Sprintf("Strike: $%s\n", rec.Strike))
	b.WriteString(fmt.Sprintf("Expiry: %s\n", rec.Expiry.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Volume: %.1fM\n", float64(rec.Volume)/1_000_000))
	b.WriteString(fmt.Sprintf("Action: %s\n", rec.Action))
	b.WriteString(fmt.Sprintf("Time Frame: %s\n\n", rec.TimeFrame))
}

func writeRisk(b *strings.Builder, rec *model.Recommendation) {
	b.WriteString(fmt.Sprintf("Target: $%s\n", rec.TargetPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Stop: $%s\n", rec.StopLoss.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Risk Level: %s\n", rec.RiskLevel))
	b.WriteString(fmt.Sprintf("Quantum Score: %s\n\n", rec.QuantumScore))
}

func writeAnalysis(b *strings.Builder, rec *model.Recommendation) {
	t := rec.Technicals
	b.WriteString("🔬 <b>QUANTUM ANALYSIS</b>\n")
	b.WriteString(fmt.Sprintf("RSI: %g %s\n", t.RSI, t.RSISignal))
	b.WriteString(fmt.Sprintf("MACD: %g\n", t.MACD))
	b.WriteString(fmt.Sprintf("Volatility: %s\n", t.Volatility))
	b.WriteString(fmt.Sprintf("Edge: %s\n\n", t.QuantumEdge))

	b.WriteString("🌊 <b>MARKET STRUCTURE</b>\n")
	b.WriteString(fmt.Sprintf("Trend: %s\n", t.Trend))
	b.WriteString(fmt.Sprintf("Momentum: %s\n", t.Momentum))
	b.WriteString(fmt.Sprintf("Flow: %s\n", t.VolumeTrend))
	b.WriteString(fmt.Sprintf("Support: $%s\n", t.Support.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Resistance: $%s\n\n", t.Resistance.StringFixed(2)))
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// PlainText strips the HTML markup used by the formatters, for terminal output.
func PlainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
