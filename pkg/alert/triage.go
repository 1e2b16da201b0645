package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/alert"
	"github.com/constraintwatch/constraintwatch/ent/event"
	"github.com/constraintwatch/constraintwatch/ent/theme"
	"github.com/constraintwatch/constraintwatch/ent/themeevent"
	"github.com/constraintwatch/constraintwatch/pkg/telegram"
)

const (
	inflectionWindow           = 30 * time.Minute
	newCandidateMinEventCount  = 3
	actionableMinScore         = 0.70
	actionableMinUniqueSources = 3
)

var inflectionEventTypes = map[event.EventType]struct{}{
	event.EventTypeALLOCATION:         {},
	event.EventTypeLEAD_TIME_EXTENDED: {},
	event.EventTypeDISRUPTION:         {},
	event.EventTypePOLICY_RESTRICTION: {},
}

// RunTriage runs all three checks in turn, each bounded by maxPerDay and
// per-(type,theme,day) dedup, and returns the total alerts sent.
func RunTriage(ctx context.Context, client *ent.Client, sender *telegram.Service, maxPerDay int, now time.Time) (int, error) {
	candidates, err := triageNewCandidates(ctx, client, sender, maxPerDay, now)
	if err != nil {
		return candidates, fmt.Errorf("triaging new candidates: %w", err)
	}
	inflections, err := triageInflections(ctx, client, sender, maxPerDay, now)
	if err != nil {
		return candidates + inflections, fmt.Errorf("triaging inflections: %w", err)
	}
	briefings, err := triageActionableBriefings(ctx, client, sender, maxPerDay, now)
	if err != nil {
		return candidates + inflections + briefings, fmt.Errorf("triaging briefings: %w", err)
	}

	total := candidates + inflections + briefings
	if total > 0 {
		slog.Info("alert triage complete", "new_candidate", candidates, "inflection", inflections, "briefing", briefings)
	}
	return total, nil
}

// underDailyCap reports whether another alert may still be sent today.
func underDailyCap(ctx context.Context, client *ent.Client, maxPerDay int, now time.Time) (bool, error) {
	count, err := dailyAlertCount(ctx, client, now)
	if err != nil {
		return false, err
	}
	return count < maxPerDay, nil
}

func triageNewCandidates(ctx context.Context, client *ent.Client, sender *telegram.Service, maxPerDay int, now time.Time) (int, error) {
	themes, err := client.Theme.Query().
		Where(theme.StatusEQ(theme.StatusCANDIDATE), theme.EventCountGTE(newCandidateMinEventCount)).
		Order(ent.Desc(theme.FieldTighteningScore)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading candidate themes: %w", err)
	}

	sent := 0
	for _, th := range themes {
		already, err := alreadySentToday(ctx, client, alert.AlertTypeNEW_CANDIDATE, th.ID, now)
		if err != nil {
			return sent, err
		}
		if already {
			continue
		}
		ok, err := underDailyCap(ctx, client, maxPerDay, now)
		if err != nil {
			return sent, err
		}
		if !ok {
			break
		}

		msg := formatNewCandidate(th)
		msgID, _ := sender.Send(ctx, msg, "HTML")
		if err := storeAlert(ctx, client, alert.AlertTypeNEW_CANDIDATE, th.ID, themePayload(th), msgID, now); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func triageInflections(ctx context.Context, client *ent.Client, sender *telegram.Service, maxPerDay int, now time.Time) (int, error) {
	events, err := client.Event.Query().
		Where(
			event.CreatedAtGT(now.Add(-inflectionWindow)),
			event.DirectionEQ(event.DirectionTIGHTENING),
		).
		Order(ent.Desc(event.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading recent events for inflection check: %w", err)
	}

	sent := 0
	for _, ev := range events {
		if _, ok := inflectionEventTypes[ev.EventType]; !ok {
			continue
		}
		if tier, ok := ev.Evidence["source_tier"].(float64); !ok || int(tier) != 1 {
			continue
		}

		th, err := topThemeForEvent(ctx, client, ev.ID)
		if err != nil {
			return sent, err
		}
		if th == nil {
			continue
		}

		already, err := alreadySentToday(ctx, client, alert.AlertTypeINFLECTION, th.ID, now)
		if err != nil {
			return sent, err
		}
		if already {
			continue
		}
		ok, err := underDailyCap(ctx, client, maxPerDay, now)
		if err != nil {
			return sent, err
		}
		if !ok {
			break
		}

		msg := formatInflection(th, ev)
		msgID, _ := sender.Send(ctx, msg, "HTML")
		payload := themePayload(th)
		payload["trigger_event_id"] = ev.ID
		if err := storeAlert(ctx, client, alert.AlertTypeINFLECTION, th.ID, payload, msgID, now); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func triageActionableBriefings(ctx context.Context, client *ent.Client, sender *telegram.Service, maxPerDay int, now time.Time) (int, error) {
	themes, err := client.Theme.Query().
		Where(
			theme.StatusIn(theme.StatusACTIVE, theme.StatusMATURE),
			theme.TighteningScoreGTE(actionableMinScore),
			theme.UniqueSourcesGTE(actionableMinUniqueSources),
		).
		Order(ent.Desc(theme.FieldTighteningScore)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading actionable-threshold themes: %w", err)
	}

	sent := 0
	for _, th := range themes {
		thesis := readThesis(th.Thesis)
		if len(thesis.InvalidationTriggers) == 0 || thesis.ReliefTimeline == "" {
			continue
		}

		already, err := alreadySentToday(ctx, client, alert.AlertTypeACTIONABLE_BRIEFING, th.ID, now)
		if err != nil {
			return sent, err
		}
		if already {
			continue
		}
		ok, err := underDailyCap(ctx, client, maxPerDay, now)
		if err != nil {
			return sent, err
		}
		if !ok {
			break
		}

		msg := formatActionableBriefing(th)
		msgID, _ := sender.Send(ctx, msg, "HTML")
		if err := storeAlert(ctx, client, alert.AlertTypeACTIONABLE_BRIEFING, th.ID, themePayload(th), msgID, now); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// topThemeForEvent returns the highest tightening_score theme linked to
// eventID, or nil if the event belongs to no theme.
func topThemeForEvent(ctx context.Context, client *ent.Client, eventID int) (*ent.Theme, error) {
	themeIDs, err := client.ThemeEvent.Query().
		Where(themeevent.EventIDEQ(eventID)).
		Select(themeevent.FieldThemeID).
		Strings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading theme links for event %d: %w", eventID, err)
	}
	if len(themeIDs) == 0 {
		return nil, nil
	}

	return client.Theme.Query().
		Where(theme.IDIn(themeIDs...)).
		Order(ent.Desc(theme.FieldTighteningScore)).
		First(ctx)
}

func themePayload(th *ent.Theme) map[string]interface{} {
	return map[string]interface{}{
		"theme_id":         th.ID,
		"name":             th.Name,
		"constraint_layer": string(th.ConstraintLayer),
		"tightening_score": th.TighteningScore,
		"event_count":      th.EventCount,
		"tightening_count": th.TighteningCount,
	}
}
