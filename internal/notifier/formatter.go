package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

var zoneEmoji = map[model.Zone]string{
	model.ZoneOversold:   "🟢",
	model.ZoneNeutral:    "⚪",
	model.ZoneOverbought: "🔴",
}

func nullable(valid bool, v float64, format string) string {
	if !valid {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

// FormatSnapshot renders the indicator reading for one symbol.
func FormatSnapshot(snap *model.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b> | %s\n", zoneEmoji[snap.Signal.Zone], html.EscapeString(snap.Symbol), snap.AsOf.Format("2006-01-02"))
	fmt.Fprintf(&b, "Prezzo: %.2f\n", snap.Price)
	fmt.Fprintf(&b, "RSI14: %s | SMA20: %s\n",
		nullable(snap.RSI14.Valid, snap.RSI14.Float64, "%.1f"),
		nullable(snap.SMA20.Valid, snap.SMA20.Float64, "%.2f"))
	if snap.Signal.Label != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(snap.Signal.Label))
	}
	return b.String()
}

// FormatZoneAlert announces a move into a new RSI band.
func FormatZoneAlert(prev model.Zone, snap *model.Snapshot) string {
	from := string(prev)
	if from == "" {
		from = "?"
	}
	return fmt.Sprintf("🚨 <b>Cambio zona</b>: %s → %s\n\n%s", from, snap.Signal.Zone, FormatSnapshot(snap))
}

// FormatQuotes renders a compact quote table.
func FormatQuotes(quotes []model.Quote) string {
	if len(quotes) == 0 {
		return "Nessuna quotazione disponibile."
	}
	var b strings.Builder
	b.WriteString("💹 <b>Quotazioni</b>\n\n")
	for _, q := range quotes {
		arrow := "▲"
		if q.ChangePct < 0 {
			arrow = "▼"
		}
		fmt.Fprintf(&b, "%s %s: %.2f (%+.2f%%)\n", arrow, html.EscapeString(q.Symbol), q.Last, q.ChangePct)
	}
	return b.String()
}

// FormatNews renders headlines as links.
func FormatNews(symbol string, items []model.NewsItem) string {
	if len(items) == 0 {
		return fmt.Sprintf("Nessuna notizia per %s.", html.EscapeString(symbol))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>News %s</b>\n\n", html.EscapeString(symbol))
	for _, it := range items {
		fmt.Fprintf(&b, "• <a href=\"%s\">%s</a>\n", html.EscapeString(it.Link), html.EscapeString(it.Title))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>CyberTrading Hub</b>\n\n" +
		"/quote &lt;ticker...&gt; - quotazioni a 5 giorni\n" +
		"/news &lt;ticker&gt; - ultime notizie\n" +
		"/scan - analisi della watchlist\n" +
		"/help - questo messaggio"
}
