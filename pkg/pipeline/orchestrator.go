package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/pkg/alert"
	"github.com/constraintwatch/constraintwatch/pkg/entitydiscover"
	"github.com/constraintwatch/constraintwatch/pkg/entitylink"
	"github.com/constraintwatch/constraintwatch/pkg/lang"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
	"github.com/constraintwatch/constraintwatch/pkg/masking"
	"github.com/constraintwatch/constraintwatch/pkg/telegram"
	"github.com/constraintwatch/constraintwatch/pkg/theme"
)

// SweepInterval is the idle delay between sweeps when a sweep claimed
// nothing in any stage.
const SweepInterval = 15 * time.Second

// MaxAlertsPerDay caps the alert triage step's daily send volume.
const MaxAlertsPerDay = 20

// Orchestrator wires the shared clients every sweep stage needs.
type Orchestrator struct {
	DB         *ent.Client
	LLM        *llm.Client
	Translator *lang.Translator
	Index      *entitylink.Index
	Telegram   *telegram.Service
	Masker     *masking.Service
	BatchSize  int
}

// NewOrchestrator constructs an Orchestrator with DefaultBatchSize.
func NewOrchestrator(db *ent.Client, llmClient *llm.Client, translator *lang.Translator, index *entitylink.Index, sender *telegram.Service, masker *masking.Service) *Orchestrator {
	return &Orchestrator{
		DB:         db,
		LLM:        llmClient,
		Translator: translator,
		Index:      index,
		Telegram:   sender,
		Masker:     masker,
		BatchSize:  DefaultBatchSize,
	}
}

// Run loops sweeps until ctx is cancelled, sleeping SweepInterval between
// idle sweeps (one that claimed nothing in any stage).
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("pipeline orchestrator stopping", "reason", ctx.Err())
			return
		default:
		}

		claimed, err := o.Sweep(ctx)
		if err != nil {
			slog.Error("pipeline sweep failed", "error", err)
		}

		if claimed == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(SweepInterval):
			}
		}
	}
}

// Sweep runs the three claim stages, the entity promotion pass, the theme
// cycle, and alert triage once, returning the total number of items
// claimed across all three stages (0 means the orchestrator should idle).
func (o *Orchestrator) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	claimed := 0

	claimed += o.runStage(ctx, "COLLECTED", func() (stageResult, error) {
		return processCollected(ctx, o.DB, o.Translator, o.BatchSize)
	})
	claimed += o.runStage(ctx, "NORMALIZED", func() (stageResult, error) {
		return processNormalized(ctx, o.DB, o.Index, o.BatchSize)
	})
	claimed += o.runStage(ctx, "LINKED", func() (stageResult, error) {
		return processLinked(ctx, o.DB, o.LLM, o.Masker, o.BatchSize)
	})

	if promoted, err := entitydiscover.PromoteEntities(ctx, o.DB, o.Index); err != nil {
		slog.Error("entity promotion failed", "error", err)
	} else if promoted > 0 {
		slog.Info("entities promoted", "count", promoted)
	}

	if touched, err := theme.RunCycle(ctx, o.DB, o.LLM, now); err != nil {
		slog.Error("theme cycle failed", "error", err)
	} else if touched > 0 {
		slog.Info("theme cycle complete", "themes_touched", touched)
	}

	if sent, err := alert.RunTriage(ctx, o.DB, o.Telegram, MaxAlertsPerDay, now); err != nil {
		slog.Error("alert triage failed", "error", err)
	} else if sent > 0 {
		slog.Info("alerts sent", "count", sent)
	}

	return claimed, nil
}

// runStage runs one claim stage, records a PipelineRun audit row for it,
// and returns its processed-item count.
func (o *Orchestrator) runStage(ctx context.Context, stage string, fn func() (stageResult, error)) int {
	run, err := o.DB.PipelineRun.Create().SetStage(stage).Save(ctx)
	if err != nil {
		slog.Error("failed to open pipeline run audit row", "stage", stage, "error", err)
	}

	result, err := fn()
	if err != nil {
		slog.Error("pipeline stage failed", "stage", stage, "error", err)
	}

	if run != nil {
		finishedAt := time.Now()
		if updErr := o.DB.PipelineRun.UpdateOneID(run.ID).
			SetItemsProcessed(result.Processed).
			SetItemsErrored(result.Errored).
			SetFinishedAt(finishedAt).
			Exec(ctx); updErr != nil {
			slog.Error("failed to close pipeline run audit row", "stage", stage, "error", updErr)
		}
	}

	if result.Processed > 0 {
		slog.Info("pipeline stage complete", "stage", stage, "processed", result.Processed, "errored", result.Errored)
	}
	return result.Processed
}
