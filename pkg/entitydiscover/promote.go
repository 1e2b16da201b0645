package entitydiscover

import (
	"context"
	"fmt"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/entity"
	"github.com/constraintwatch/constraintwatch/ent/entitymention"
	"github.com/constraintwatch/constraintwatch/ent/event"
	"github.com/constraintwatch/constraintwatch/ent/item"
	"github.com/constraintwatch/constraintwatch/pkg/entitylink"
)

const (
	provisionalMinMentions = 3
	provisionalMinSources  = 2
	confirmedMinMentions   = 6
	confirmedMinSources    = 3
)

// PromoteEntities advances DISCOVERED entities to PROVISIONAL and
// PROVISIONAL entities to CONFIRMED wherever the forward-only promotion
// thresholds are met, and rebuilds the alias index if anything changed.
// Returns the number of entities promoted.
func PromoteEntities(ctx context.Context, client *ent.Client, index *entitylink.Index) (int, error) {
	promoted := 0

	discovered, err := client.Entity.Query().
		Where(entity.StatusEQ(entity.StatusDISCOVERED), entity.MentionCountGTE(provisionalMinMentions)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading DISCOVERED entities: %w", err)
	}
	for _, e := range discovered {
		sources, err := distinctSourceCount(ctx, client, e.ID)
		if err != nil {
			return promoted, err
		}
		if sources < provisionalMinSources {
			continue
		}
		if err := client.Entity.UpdateOneID(e.ID).SetStatus(entity.StatusPROVISIONAL).Exec(ctx); err != nil {
			return promoted, fmt.Errorf("promoting %s to PROVISIONAL: %w", e.ID, err)
		}
		promoted++
	}

	provisional, err := client.Entity.Query().
		Where(entity.StatusEQ(entity.StatusPROVISIONAL), entity.MentionCountGTE(confirmedMinMentions)).
		All(ctx)
	if err != nil {
		return promoted, fmt.Errorf("loading PROVISIONAL entities: %w", err)
	}
	for _, e := range provisional {
		sources, err := distinctSourceCount(ctx, client, e.ID)
		if err != nil {
			return promoted, err
		}
		if sources < confirmedMinSources {
			continue
		}
		tightened, err := referencesTighteningEvent(ctx, client, e.ID)
		if err != nil {
			return promoted, err
		}
		if !tightened {
			continue
		}
		if err := client.Entity.UpdateOneID(e.ID).SetStatus(entity.StatusCONFIRMED).Exec(ctx); err != nil {
			return promoted, fmt.Errorf("promoting %s to CONFIRMED: %w", e.ID, err)
		}
		promoted++
	}

	if promoted > 0 && index != nil {
		if err := index.Rebuild(ctx, client); err != nil {
			return promoted, fmt.Errorf("rebuilding alias index after promotion: %w", err)
		}
	}
	return promoted, nil
}

// distinctSourceCount returns the number of distinct sources whose items
// mention entityID, via entity_mentions -> items.source_id.
func distinctSourceCount(ctx context.Context, client *ent.Client, entityID string) (int, error) {
	itemIDs, err := client.EntityMention.Query().
		Where(entitymention.EntityIDEQ(entityID)).
		Select(entitymention.FieldItemID).
		Strings(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading mention item ids for %s: %w", entityID, err)
	}
	if len(itemIDs) == 0 {
		return 0, nil
	}

	sourceIDs, err := client.Item.Query().
		Where(item.IDIn(itemIDs...)).
		Select(item.FieldSourceID).
		Strings(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading source ids for entity %s: %w", entityID, err)
	}

	seen := make(map[string]struct{}, len(sourceIDs))
	for _, s := range sourceIDs {
		seen[s] = struct{}{}
	}
	return len(seen), nil
}

// referencesTighteningEvent reports whether any TIGHTENING event's
// entities blob names entityID.
func referencesTighteningEvent(ctx context.Context, client *ent.Client, entityID string) (bool, error) {
	events, err := client.Event.Query().
		Where(event.DirectionEQ(event.DirectionTIGHTENING)).
		All(ctx)
	if err != nil {
		return false, fmt.Errorf("loading tightening events: %w", err)
	}
	for _, ev := range events {
		for _, ref := range ev.Entities {
			if id, ok := ref["entity_id"].(string); ok && id == entityID {
				return true, nil
			}
		}
	}
	return false, nil
}
