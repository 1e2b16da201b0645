package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/alert"
)

// dedupKey builds the per-(type,theme,day) deduplication key. themeID may
// be empty for theme-less alerts (e.g. a future daily digest), which maps
// to the literal "none" segment.
func dedupKey(alertType alert.AlertType, themeID string, day time.Time) string {
	if themeID == "" {
		themeID = "none"
	}
	return fmt.Sprintf("%s:%s:%s", alertType, themeID, day.UTC().Format("2006-01-02"))
}

// alreadySentToday reports whether this (type, theme) pair already has an
// alert row for today's UTC calendar day.
func alreadySentToday(ctx context.Context, client *ent.Client, alertType alert.AlertType, themeID string, now time.Time) (bool, error) {
	exists, err := client.Alert.Query().
		Where(alert.DedupKeyEQ(dedupKey(alertType, themeID, now))).
		Exist(ctx)
	if err != nil {
		return false, fmt.Errorf("checking alert dedup for %s/%s: %w", alertType, themeID, err)
	}
	return exists, nil
}

// dailyAlertCount counts alerts sent since the start of today's UTC
// calendar day.
func dailyAlertCount(ctx context.Context, client *ent.Client, now time.Time) (int, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := client.Alert.Query().Where(alert.SentAtGTE(dayStart)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting today's alerts: %w", err)
	}
	return count, nil
}

// AlreadySentDigestToday reports whether a DAILY_DIGEST alert already
// exists for today's UTC calendar day.
func AlreadySentDigestToday(ctx context.Context, client *ent.Client, now time.Time) (bool, error) {
	return alreadySentToday(ctx, client, alert.AlertTypeDAILY_DIGEST, "", now)
}

// StoreDailyDigest inserts the DAILY_DIGEST alert row after delivery,
// under dedup key DAILY_DIGEST:none:<date>.
func StoreDailyDigest(ctx context.Context, client *ent.Client, payload map[string]interface{}, telegramMessageID *int64, now time.Time) error {
	return storeAlert(ctx, client, alert.AlertTypeDAILY_DIGEST, "", payload, telegramMessageID, now)
}

// storeAlert inserts the alert row after delivery. A dedup-key conflict
// (another worker won the race) is silently ignored.
func storeAlert(ctx context.Context, client *ent.Client, alertType alert.AlertType, themeID string, payload map[string]interface{}, telegramMessageID *int64, now time.Time) error {
	create := client.Alert.Create().
		SetAlertType(alertType).
		SetPayload(payload).
		SetDedupKey(dedupKey(alertType, themeID, now))
	if themeID != "" {
		create = create.SetThemeID(themeID)
	}
	if telegramMessageID != nil {
		create = create.SetTelegramMessageID(*telegramMessageID)
	}

	_, err := create.Save(ctx)
	if err == nil {
		return nil
	}
	if ent.IsConstraintError(err) {
		return nil
	}
	return fmt.Errorf("storing alert %s/%s: %w", alertType, themeID, err)
}
