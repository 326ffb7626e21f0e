package usecase

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/dustin/go-humanize"
)

// NotificationComposer renders alert emails. Output depends only on its
// inputs.
type NotificationComposer struct {
	siteURL string
}

func NewNotificationComposer(siteURL string) NotificationComposer {
	return NotificationComposer{siteURL: strings.TrimRight(siteURL, "/")}
}

func (c NotificationComposer) Subject(alert domain.Alert, snapshot domain.MarketSnapshot) string {
	switch payload := alert.Payload.(type) {
	case domain.PresetPayload:
		switch payload.Preset {
		case domain.PresetWhale:
			return "🐋 Whale activity on " + snapshot.Title
		case domain.PresetFlip:
			return "🔄 Favorite flipped on " + snapshot.Title
		}
	}
	return "🔔 Alert triggered: " + snapshot.Title
}

func (c NotificationComposer) Body(alert domain.Alert, snapshot domain.MarketSnapshot) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(snapshot.Title))
	fmt.Fprintf(&b, "<p>%s</p>", describeTrigger(alert, snapshot))

	if len(snapshot.Outcomes) > 0 {
		b.WriteString(`<table cellpadding="6" style="border-collapse:collapse">`)
		b.WriteString("<tr><th align=\"left\">Outcome</th><th>Price</th><th>Probability</th><th>Volume</th></tr>")
		for _, outcome := range snapshot.Outcomes {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(outcome.Label),
				formatCents(outcome.Price),
				formatPercent(outcome.Price),
				formatVolume(outcome.Volume),
			)
		}
		b.WriteString("</table>")
	}

	fmt.Fprintf(&b, "<p>Total volume: %s</p>", formatVolume(snapshot.TotalVolume))
	if c.siteURL != "" {
		link := c.siteURL + "/event/" + url.PathEscape(snapshot.MarketID)
		fmt.Fprintf(&b, `<p><a href="%s">View market</a></p>`, html.EscapeString(link))
	}
	b.WriteString("</div>")
	return b.String()
}

func describeTrigger(alert domain.Alert, snapshot domain.MarketSnapshot) string {
	switch payload := alert.Payload.(type) {
	case domain.PresetPayload:
		switch payload.Preset {
		case domain.PresetWhale:
			return "Unusual trading volume was detected on this market."
		case domain.PresetFlip:
			for _, outcome := range snapshot.Outcomes {
				if outcome.ID == snapshot.FavoriteOutcomeID {
					return "The favorite outcome changed. New favorite: <strong>" + html.EscapeString(outcome.Label) + "</strong>."
				}
			}
			return "The favorite outcome changed."
		}
	case domain.CustomPayload:
		return "Your rule matched: " + html.EscapeString(describeRule(payload.Rule))
	}
	return "Your alert was triggered."
}

func describeRule(rule domain.Rule) string {
	parts := make([]string, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		op := string(cond.Operator)
		switch cond.Operator {
		case domain.OperatorGreaterThan:
			op = ">"
		case domain.OperatorLessThan:
			op = "<"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", cond.Metric, op, strconv.FormatFloat(cond.Value, 'f', -1, 64)))
	}
	return strings.Join(parts, " "+string(rule.Combinator)+" ")
}

func formatCents(price float64) string {
	return strconv.FormatFloat(price*100, 'f', 1, 64) + "¢"
}

func formatPercent(probability float64) string {
	return strconv.FormatFloat(probability*100, 'f', 1, 64) + "%"
}

func formatVolume(volume float64) string {
	return "$" + humanize.Comma(int64(math.Round(volume)))
}
