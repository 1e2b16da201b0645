package extract

import (
	"context"
	"fmt"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/item"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
	"github.com/constraintwatch/constraintwatch/pkg/masking"
)

// ProcessItem runs the full extraction pipeline for a single item: it
// prefers text_en, falls back to raw_text, redacts secrets/PII before the
// text reaches the extraction prompt, extracts and persists events, and
// marks the item DONE regardless of yield.
func ProcessItem(ctx context.Context, dbClient *ent.Client, llmClient *llm.Client, masker *masking.Service, itemID string) (int, error) {
	it, err := dbClient.Item.Get(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("loading item %s: %w", itemID, err)
	}

	src, err := dbClient.Source.Get(ctx, it.SourceID)
	if err != nil {
		return 0, fmt.Errorf("loading source %s for item %s: %w", it.SourceID, itemID, err)
	}

	text := it.RawText
	if it.TextEn != nil && *it.TextEn != "" {
		text = *it.TextEn
	}
	text = masker.Redact(text)

	source := Source{
		ID:       src.ID,
		Name:     src.DisplayName,
		Tier:     src.Tier,
		Language: src.Language,
	}
	if src.URL != nil {
		source.URL = *src.URL
	}

	result, err := ExtractEvents(ctx, llmClient, itemID, text, source)
	if err != nil {
		return 0, fmt.Errorf("extracting events for item %s: %w", itemID, err)
	}

	stored := 0
	if !result.Skipped && len(result.Events) > 0 {
		stored, err = StoreEvents(ctx, dbClient, itemID, result.Events, source)
		if err != nil {
			return 0, fmt.Errorf("storing events for item %s: %w", itemID, err)
		}
	}

	if err := dbClient.Item.UpdateOneID(itemID).SetPipelineStatus(item.PipelineStatusDONE).Exec(ctx); err != nil {
		return stored, fmt.Errorf("marking item %s DONE: %w", itemID, err)
	}
	return stored, nil
}
