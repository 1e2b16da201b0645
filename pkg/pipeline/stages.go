package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/item"
	"github.com/constraintwatch/constraintwatch/pkg/entitylink"
	"github.com/constraintwatch/constraintwatch/pkg/extract"
	"github.com/constraintwatch/constraintwatch/pkg/lang"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
	"github.com/constraintwatch/constraintwatch/pkg/masking"
)

// stageResult tracks a single stage's processed/errored counts for the
// PipelineRun audit row.
type stageResult struct {
	Processed int
	Errored   int
}

// processCollected claims COLLECTED items into NORMALIZED and, per item,
// detects the source language and translates to English.
func processCollected(ctx context.Context, client *ent.Client, translator *lang.Translator, batchSize int) (stageResult, error) {
	items, err := claimBatch(ctx, client, item.PipelineStatusCOLLECTED, item.PipelineStatusNORMALIZED, batchSize)
	if err != nil {
		return stageResult{}, err
	}

	var result stageResult
	g, gctx := errgroup.WithContext(ctx)
	var mu countMutex
	for _, it := range items {
		it := it
		g.Go(func() error {
			err := normalizeItem(gctx, client, translator, it)
			mu.record(&result, err)
			return nil // per-item failure never aborts the batch
		})
	}
	_ = g.Wait()
	return result, nil
}

func normalizeItem(ctx context.Context, client *ent.Client, translator *lang.Translator, it *ent.Item) error {
	language, _ := lang.DetectLanguage(it.RawText)
	textEn, confidence := translator.TranslateToEnglish(ctx, it.RawText, language)

	err := client.Item.UpdateOneID(it.ID).
		SetLanguage(language).
		SetTextEn(textEn).
		SetTranslationConfidence(confidence).
		Exec(ctx)
	if err != nil {
		markError(ctx, client, it.ID, fmt.Sprintf("normalize: %v", err))
		return err
	}
	return nil
}

// processNormalized claims NORMALIZED items into LINKED and, per item,
// links entities in the translated text, storing mentions and
// discovering any new entity the alias index missed.
func processNormalized(ctx context.Context, client *ent.Client, index *entitylink.Index, batchSize int) (stageResult, error) {
	items, err := claimBatch(ctx, client, item.PipelineStatusNORMALIZED, item.PipelineStatusLINKED, batchSize)
	if err != nil {
		return stageResult{}, err
	}

	var result stageResult
	g, gctx := errgroup.WithContext(ctx)
	var mu countMutex
	for _, it := range items {
		it := it
		g.Go(func() error {
			err := linkItem(gctx, client, index, it)
			mu.record(&result, err)
			return nil
		})
	}
	_ = g.Wait()
	return result, nil
}

func linkItem(ctx context.Context, client *ent.Client, index *entitylink.Index, it *ent.Item) error {
	text := it.RawText
	if it.TextEn != nil && *it.TextEn != "" {
		text = *it.TextEn
	}

	matches := index.LinkEntitiesInText(text)
	if err := entitylink.StoreEntityMentions(ctx, client, it.ID, matches, ""); err != nil {
		markError(ctx, client, it.ID, fmt.Sprintf("link: %v", err))
		return err
	}
	return nil
}

// processLinked claims LINKED items into EXTRACTED and runs the LLM event
// extractor, which marks each item DONE regardless of yield.
func processLinked(ctx context.Context, client *ent.Client, llmClient *llm.Client, masker *masking.Service, batchSize int) (stageResult, error) {
	items, err := claimBatch(ctx, client, item.PipelineStatusLINKED, item.PipelineStatusEXTRACTED, batchSize)
	if err != nil {
		return stageResult{}, err
	}

	var result stageResult
	g, gctx := errgroup.WithContext(ctx)
	var mu countMutex
	for _, it := range items {
		it := it
		g.Go(func() error {
			_, err := extract.ProcessItem(gctx, client, llmClient, masker, it.ID)
			if err != nil {
				markError(gctx, client, it.ID, fmt.Sprintf("extract: %v", err))
			}
			mu.record(&result, err)
			return nil
		})
	}
	_ = g.Wait()
	return result, nil
}
