// Package digest composes and delivers the once-daily summary of theme
// movement and high-severity alerts (C17).
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	entalert "github.com/constraintwatch/constraintwatch/ent/alert"
	"github.com/constraintwatch/constraintwatch/ent/theme"
	"github.com/constraintwatch/constraintwatch/pkg/alert"
	"github.com/constraintwatch/constraintwatch/pkg/telegram"
)

const window = 24 * time.Hour

// RunDaily composes the digest for the trailing 24h window, sends it,
// and records the DAILY_DIGEST alert row. A digest already sent for
// today's UTC calendar day is a no-op.
func RunDaily(ctx context.Context, client *ent.Client, sender *telegram.Service, now time.Time) error {
	already, err := alert.AlreadySentDigestToday(ctx, client, now)
	if err != nil {
		return fmt.Errorf("checking digest dedup: %w", err)
	}
	if already {
		return nil
	}

	since := now.Add(-window)

	themes, err := client.Theme.Query().
		Where(theme.UpdatedAtGTE(since)).
		Order(ent.Desc(theme.FieldTighteningScore)).
		All(ctx)
	if err != nil {
		return fmt.Errorf("loading themes for digest: %w", err)
	}

	alerts, err := client.Alert.Query().
		Where(
			entalert.SentAtGTE(since),
			entalert.AlertTypeIn(entalert.AlertTypeINFLECTION, entalert.AlertTypeACTIONABLE_BRIEFING),
		).
		Order(ent.Desc(entalert.FieldSentAt)).
		All(ctx)
	if err != nil {
		return fmt.Errorf("loading alerts for digest: %w", err)
	}

	text := render(themes, alerts, now)
	msgID, _ := sender.Send(ctx, text, "HTML")

	payload := map[string]interface{}{
		"date":        now.UTC().Format("2006-01-02"),
		"theme_count": len(themes),
		"alert_count": len(alerts),
	}
	return alert.StoreDailyDigest(ctx, client, payload, msgID, now)
}

// render builds the Telegram-HTML-subset digest body: bold and line
// breaks only, no link previews (the sink disables them unconditionally).
func render(themes []*ent.Theme, alerts []*ent.Alert, now time.Time) string {
	lines := []string{
		fmt.Sprintf("\U0001F4CB <b>Daily digest — %s</b>", now.UTC().Format("2006-01-02")),
		"",
	}

	if len(themes) == 0 && len(alerts) == 0 {
		lines = append(lines, "No theme movement or alerts in the past 24h.")
		return strings.Join(lines, "\n")
	}

	if len(themes) > 0 {
		lines = append(lines, "<b>Themes updated:</b>")
		for _, th := range themes {
			lines = append(lines, fmt.Sprintf("  • %s — %s, score %.2f", th.Name, th.Status, th.TighteningScore))
		}
		lines = append(lines, "")
	}

	if len(alerts) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Alerts sent (%d):</b>", len(alerts)))
		for _, al := range alerts {
			themeID := "—"
			if al.ThemeID != nil {
				themeID = *al.ThemeID
			}
			lines = append(lines, fmt.Sprintf("  • %s — %s", al.AlertType, themeID))
		}
	}

	return strings.Join(lines, "\n")
}
