package entitylink

import (
	"context"
	"fmt"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/entity"
)

// StoreEntityMentions inserts one EntityMention row per match and
// atomically increments mention_count on each linked entity. Mentions are
// additive and are never deleted or updated afterward.
func StoreEntityMentions(ctx context.Context, client *ent.Client, itemID string, matches []Match, layerHint string) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting mention tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range matches {
		create := tx.EntityMention.Create().
			SetEntityID(m.EntityID).
			SetItemID(itemID).
			SetContextSnippet(m.ContextSnippet)
		if layerHint != "" {
			create = create.SetLayerHint(layerHint)
		}
		if _, err := create.Save(ctx); err != nil {
			return fmt.Errorf("inserting mention for %s: %w", m.EntityID, err)
		}

		if err := tx.Entity.Update().
			Where(entity.IDEQ(m.EntityID)).
			AddMentionCount(1).
			Exec(ctx); err != nil {
			return fmt.Errorf("incrementing mention_count for %s: %w", m.EntityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing mention tx: %w", err)
	}
	return nil
}
