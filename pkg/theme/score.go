package theme

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/entity"
)

const (
	velocityWindow = 7 * 24 * time.Hour
	noveltyWindow  = 14 * 24 * time.Hour
)

// Scores holds the five normalized components and their weighted
// composite for a single cluster.
type Scores struct {
	Velocity         float64
	Breadth          float64
	Quality          float64
	Allocation       float64
	Novelty          float64
	TighteningScore  float64
	EventCount       int
	TighteningCount  int
	EasingCount      int
	UniqueEntities   int
	UniqueSources    int
}

// Score computes a cluster's five weighted components and composite
// tightening_score, all rounded to three decimals. The composite is
// monotone in each component by construction (a positive-weighted sum).
func Score(ctx context.Context, client *ent.Client, c Cluster, now time.Time) (Scores, error) {
	var tighteningRecent, tighteningTotal, easingTotal, allocationLike int
	entityIDs := make(map[string]struct{})
	sourceIDs := make(map[string]struct{})
	tierSum := 0.0
	noveltyHits := 0

	for _, ev := range c.Events {
		switch ev.Direction {
		case "TIGHTENING":
			tighteningTotal++
			if ev.CreatedAt.After(now.Add(-velocityWindow)) {
				tighteningRecent++
			}
		case "EASING":
			easingTotal++
		}

		switch ev.EventType {
		case "ALLOCATION", "LEAD_TIME_EXTENDED":
			allocationLike++
		}

		for _, ref := range ev.Entities {
			id, ok := ref["entity_id"].(string)
			if !ok || id == "" {
				continue
			}
			entityIDs[id] = struct{}{}
		}

		if sid, ok := ev.Evidence["source_id"].(string); ok && sid != "" {
			sourceIDs[sid] = struct{}{}
		}

		tierSum += tierWeight(ev.Evidence["source_tier"])
	}

	if len(entityIDs) > 0 {
		ids := make([]string, 0, len(entityIDs))
		for id := range entityIDs {
			ids = append(ids, id)
		}
		entities, err := client.Entity.Query().
			Where(entity.IDIn(ids...)).
			All(ctx)
		if err != nil {
			return Scores{}, fmt.Errorf("loading entities for novelty scoring: %w", err)
		}
		firstSeen := make(map[string]time.Time, len(entities))
		for _, e := range entities {
			firstSeen[e.ID] = e.CreatedAt
		}
		// Counted once per (event, entity reference) occurrence, not once
		// per unique entity: an entity referenced by several recent events
		// in the same cluster is counted each time, which can double-count
		// its novelty contribution. Implemented as specified.
		for _, ev := range c.Events {
			for _, ref := range ev.Entities {
				id, ok := ref["entity_id"].(string)
				if !ok {
					continue
				}
				seenAt, ok := firstSeen[id]
				if !ok {
					continue
				}
				if seenAt.After(now.Add(-noveltyWindow)) {
					noveltyHits++
				}
			}
		}
	}

	velocity := clamp01(float64(tighteningRecent) / 10)
	breadth := clamp01((float64(len(entityIDs))/10 + float64(len(sourceIDs))/5) / 2)
	quality := 0.3
	if len(c.Events) > 0 {
		quality = clamp01(tierSum / float64(len(c.Events)))
	}
	allocation := clamp01(float64(allocationLike) / 5)
	novelty := clamp01(float64(noveltyHits) / 3)

	composite := 0.35*velocity + 0.20*breadth + 0.20*quality + 0.15*allocation + 0.10*novelty

	return Scores{
		Velocity:        round3(velocity),
		Breadth:         round3(breadth),
		Quality:         round3(quality),
		Allocation:      round3(allocation),
		Novelty:         round3(novelty),
		TighteningScore: round3(composite),
		EventCount:      len(c.Events),
		TighteningCount: tighteningTotal,
		EasingCount:     easingTotal,
		UniqueEntities:  len(entityIDs),
		UniqueSources:   len(sourceIDs),
	}, nil
}

// tierWeight maps a source tier (decoded from JSON as float64, int, or
// absent) to its quality weight: tier 1 -> 1.0, tier 2 -> 0.6, tier 3 ->
// 0.3, missing or unrecognized -> 0.3.
func tierWeight(raw interface{}) float64 {
	var tier int
	switch v := raw.(type) {
	case float64:
		tier = int(v)
	case int:
		tier = v
	default:
		return 0.3
	}
	switch tier {
	case 1:
		return 1.0
	case 2:
		return 0.6
	default:
		return 0.3
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
