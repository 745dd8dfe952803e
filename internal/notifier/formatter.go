package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

// Price renders a price with thousands separators and two decimals.
func Price(d decimal.Decimal) string {
	f, _ := d.Float64()
	return humanize.CommafWithDigits(f, 2)
}

// FormatRangeReport formats the batch as a Telegram message, one line per index.
func FormatRangeReport(title string, b *model.Batch) string {
	var sb strings.Builder
	p := b.Period
	fmt.Fprintf(&sb, "📊 <b>%s</b> | as of %s\n\n", html.EscapeString(title), p.AsOf.Format(model.DateLayout))

	for _, s := range b.Summaries {
		if s.Failed() {
			fmt.Fprintf(&sb, "❌ <b>%s</b>: %s\n", html.EscapeString(s.IndexID), html.EscapeString(s.Error))
			continue
		}
		open := "n/a"
		if s.NextOpen.Valid {
			open = Price(s.NextOpen.Decimal)
		}
		fmt.Fprintf(&sb, "%s <b>%s</b>: H %s | L %s | %s open %s (%s)\n",
			statusIcon(s.OpenStatus), html.EscapeString(s.IndexID),
			Price(s.PriorHigh), Price(s.PriorLow), p.NextLabel(), open, s.OpenStatus.Label(p))
	}

	sb.WriteString("\n")
	sb.WriteString(FormatTriggers(b))
	return sb.String()
}

// FormatTriggers lists the indices that touched the prior high or low.
func FormatTriggers(b *model.Batch) string {
	prior := b.Period.PriorLabel()
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔺 <b>Touched %s High</b>: %s\n", prior, joinOrNone(b.TouchedHigh()))
	fmt.Fprintf(&sb, "🔻 <b>Touched %s Low</b>: %s\n", prior, joinOrNone(b.TouchedLow()))
	return sb.String()
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = html.EscapeString(id)
	}
	return strings.Join(escaped, ", ")
}

func statusIcon(s model.OpenStatus) string {
	switch s {
	case model.AboveRange:
		return "⬆️"
	case model.BelowRange:
		return "⬇️"
	case model.WithinRange:
		return "↔️"
	default:
		return "❔"
	}
}
