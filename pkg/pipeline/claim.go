// Package pipeline runs the three-stage item pipeline (COLLECTED ->
// NORMALIZED -> LINKED -> EXTRACTED/DONE), the post-stage entity
// promotion/theme/triage cycle, and the sweep loop that ties them
// together (C14).
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect/sql"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/item"
)

// countMutex serializes stageResult increments across a per-item
// errgroup fan-out.
type countMutex struct {
	mu sync.Mutex
}

func (c *countMutex) record(result *stageResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result.Processed++
	if err != nil {
		result.Errored++
	}
}

// DefaultBatchSize is the number of items claimed per stage per sweep.
const DefaultBatchSize = 40

// claimBatch atomically claims up to limit oldest items in the from
// status, transitions them to the to status, and returns them with their
// in-memory PipelineStatus updated to match. Uses FOR UPDATE SKIP LOCKED
// so concurrent workers or replicas never claim the same item twice.
func claimBatch(ctx context.Context, client *ent.Client, from, to item.PipelineStatus, limit int) ([]*ent.Item, error) {
	tx, err := client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	items, err := tx.Item.Query().
		Where(item.PipelineStatusEQ(from)).
		Order(ent.Asc(item.FieldFetchedAt)).
		Limit(limit).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("claiming items from %s: %w", from, err)
	}

	if len(items) > 0 {
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		if err := tx.Item.Update().Where(item.IDIn(ids...)).SetPipelineStatus(to).Exec(ctx); err != nil {
			return nil, fmt.Errorf("transitioning claimed items from %s to %s: %w", from, to, err)
		}
		for _, it := range items {
			it.PipelineStatus = to
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim of %s items: %w", from, err)
	}
	return items, nil
}

// markError transitions a single item to ERROR with a short reason tag.
// Per-item failures never abort the batch.
func markError(ctx context.Context, client *ent.Client, itemID, reason string) {
	if len(reason) > 200 {
		reason = reason[:200]
	}
	_ = client.Item.UpdateOneID(itemID).
		SetPipelineStatus(item.PipelineStatusERROR).
		SetPipelineError(reason).
		Exec(ctx)
}
