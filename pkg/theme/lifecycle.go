package theme

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/theme"
	"github.com/constraintwatch/constraintwatch/ent/themeevent"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
)

const (
	activeMinAge            = 14 * 24 * time.Hour
	activeMinTighteningCount = 6
	activeMinUniqueEntities  = 4
	activeMinUniqueSources   = 2
)

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = slugNonAlnum.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(s, "_")
}

// RunCycle runs one full theme cycle: cluster, score, upsert, promote,
// and (for themes newly reaching ACTIVE or MATURE) generate a thesis.
// Returns the number of themes touched.
func RunCycle(ctx context.Context, dbClient *ent.Client, llmClient *llm.Client, now time.Time) (int, error) {
	clusters, err := BuildClusters(ctx, dbClient, now)
	if err != nil {
		return 0, fmt.Errorf("building clusters: %w", err)
	}

	touched := 0
	for _, c := range clusters {
		scores, err := Score(ctx, dbClient, c, now)
		if err != nil {
			return touched, fmt.Errorf("scoring cluster %s: %w", c.Key, err)
		}

		th, err := upsert(ctx, dbClient, c, scores, now)
		if err != nil {
			return touched, fmt.Errorf("upserting theme for cluster %s: %w", c.Key, err)
		}
		touched++

		promotedTo, err := promote(ctx, dbClient, th, scores, now)
		if err != nil {
			return touched, fmt.Errorf("promoting theme %s: %w", th.ID, err)
		}

		if promotedTo == theme.StatusACTIVE || promotedTo == theme.StatusMATURE {
			if err := generateAndStoreThesis(ctx, dbClient, llmClient, th.ID); err != nil {
				// Failure to generate a thesis never regresses lifecycle state.
				slog.Warn("thesis generation failed", "theme_id", th.ID, "error", err)
			}
		}
	}
	return touched, nil
}

// upsert computes theme_id = T:ai_constraints:<slug(cluster_key)>, creates
// the theme on first sight (status CANDIDATE), links every cluster event
// through ThemeEvent, and persists the latest scores and counts.
func upsert(ctx context.Context, client *ent.Client, c Cluster, scores Scores, now time.Time) (*ent.Theme, error) {
	themeID := fmt.Sprintf("T:ai_constraints:%s", slugify(c.Key))

	th, err := client.Theme.Get(ctx, themeID)
	if ent.IsNotFound(err) {
		th, err = client.Theme.Create().
			SetID(themeID).
			SetName(c.Key).
			SetConstraintLayer(theme.ConstraintLayer(c.ConstraintLayer)).
			SetStatus(theme.StatusCANDIDATE).
			Save(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating theme %s: %w", themeID, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading theme %s: %w", themeID, err)
	}

	for _, ev := range c.Events {
		exists, err := client.ThemeEvent.Query().
			Where(themeevent.ThemeIDEQ(themeID), themeevent.EventIDEQ(ev.ID)).
			Exist(ctx)
		if err != nil {
			return nil, fmt.Errorf("checking theme_event link for theme %s event %d: %w", themeID, ev.ID, err)
		}
		if exists {
			continue
		}
		if _, err := client.ThemeEvent.Create().SetThemeID(themeID).SetEventID(ev.ID).Save(ctx); err != nil {
			return nil, fmt.Errorf("linking event %d to theme %s: %w", ev.ID, themeID, err)
		}
	}

	th, err = client.Theme.UpdateOneID(themeID).
		SetVelocityScore(scores.Velocity).
		SetBreadthScore(scores.Breadth).
		SetQualityScore(scores.Quality).
		SetAllocationScore(scores.Allocation).
		SetNoveltyScore(scores.Novelty).
		SetTighteningScore(scores.TighteningScore).
		SetEventCount(scores.EventCount).
		SetTighteningCount(scores.TighteningCount).
		SetEasingCount(scores.EasingCount).
		SetUniqueEntities(scores.UniqueEntities).
		SetUniqueSources(scores.UniqueSources).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("persisting scores for theme %s: %w", themeID, err)
	}
	return th, nil
}

// promote applies the forward-only CANDIDATE -> ACTIVE -> MATURE -> FADING
// state machine and returns the status reached this cycle (which may be
// the theme's prior status if no transition fired).
func promote(ctx context.Context, client *ent.Client, th *ent.Theme, scores Scores, now time.Time) (theme.Status, error) {
	status := th.Status

	if status == theme.StatusCANDIDATE {
		age := now.Sub(th.FirstSeenAt)
		if age >= activeMinAge &&
			scores.TighteningCount >= activeMinTighteningCount &&
			scores.UniqueEntities >= activeMinUniqueEntities &&
			scores.UniqueSources >= activeMinUniqueSources {
			status = theme.StatusACTIVE
		}
	}

	if status == theme.StatusACTIVE {
		if float64(scores.EasingCount) > 0.5*float64(scores.TighteningCount) {
			status = theme.StatusMATURE
		}
	}

	if status == theme.StatusMATURE {
		if scores.EasingCount > scores.TighteningCount {
			status = theme.StatusFADING
		}
	}

	if status == th.Status {
		return status, nil
	}
	if err := client.Theme.UpdateOneID(th.ID).SetStatus(status).Exec(ctx); err != nil {
		return th.Status, fmt.Errorf("updating theme %s status to %s: %w", th.ID, status, err)
	}
	slog.Info("theme promoted", "theme_id", th.ID, "from", th.Status, "to", status)
	return status, nil
}
