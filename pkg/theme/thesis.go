package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/event"
	"github.com/constraintwatch/constraintwatch/ent/themeevent"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
)

const thesisEvidenceLimit = 15

const thesisSystemPrompt = `You are a supply chain analyst writing an investment-style thesis about an AI hardware constraint theme.

Answer these questions from the evidence:
1. What is scarce, and why now?
2. What is the causal mechanism driving the constraint?
3. Who benefits — Ring A (direct beneficiaries), Ring B (secondary), Ring C (tertiary)?
4. Who suffers from this constraint?
5. What are the leading indicators to watch?
6. What would invalidate this thesis?
7. What is the expected relief timeline?

Return valid JSON matching this schema:
{
  "one_liner": "...",
  "why_now": ["...", "..."],
  "mechanism": ["...", "..."],
  "who_benefits": {"ringA": ["..."], "ringB": ["..."], "ringC": ["..."]},
  "who_suffers": ["...", "..."],
  "leading_indicators": ["...", "..."],
  "invalidation_triggers": ["...", "..."],
  "relief_timeline": "..."
}`

// Thesis is the structured output of thesis generation, stored verbatim
// on theme.thesis.
type Thesis struct {
	OneLiner             string              `json:"one_liner"`
	WhyNow                []string            `json:"why_now"`
	Mechanism             []string            `json:"mechanism"`
	WhoBenefits           WhoBenefits         `json:"who_benefits"`
	WhoSuffers            []string            `json:"who_suffers"`
	LeadingIndicators     []string            `json:"leading_indicators"`
	InvalidationTriggers  []string            `json:"invalidation_triggers"`
	ReliefTimeline        string              `json:"relief_timeline"`
}

// WhoBenefits partitions beneficiaries into three concentric rings of
// proximity to the constraint.
type WhoBenefits struct {
	RingA []string `json:"ringA"`
	RingB []string `json:"ringB"`
	RingC []string `json:"ringC"`
}

// generateAndStoreThesis builds evidence lines from the theme's most
// recent events, asks the LLM for a structured thesis, and stores it. If
// there are no events, or the LLM reply fails to parse, it returns an
// error but never touches theme.status — the caller only logs the
// failure.
func generateAndStoreThesis(ctx context.Context, client *ent.Client, llmClient *llm.Client, themeID string) error {
	events, err := recentThemeEvents(ctx, client, themeID, thesisEvidenceLimit)
	if err != nil {
		return fmt.Errorf("loading recent events for theme %s: %w", themeID, err)
	}
	if len(events) == 0 {
		return fmt.Errorf("theme %s has no events to ground a thesis", themeID)
	}

	userPrompt := buildThesisPrompt(events)

	raw, err := llmClient.Extract(ctx, userPrompt, thesisSystemPrompt, llm.WithJSONMode())
	if err != nil {
		return fmt.Errorf("llm thesis generation for theme %s: %w", themeID, err)
	}

	var thesis Thesis
	if err := json.Unmarshal([]byte(raw), &thesis); err != nil {
		return fmt.Errorf("parsing thesis json for theme %s: %w", themeID, err)
	}

	blob := map[string]interface{}{
		"one_liner":             thesis.OneLiner,
		"why_now":               thesis.WhyNow,
		"mechanism":             thesis.Mechanism,
		"who_benefits":          thesis.WhoBenefits,
		"who_suffers":           thesis.WhoSuffers,
		"leading_indicators":    thesis.LeadingIndicators,
		"invalidation_triggers": thesis.InvalidationTriggers,
		"relief_timeline":       thesis.ReliefTimeline,
	}
	if err := client.Theme.UpdateOneID(themeID).SetThesis(blob).Exec(ctx); err != nil {
		return fmt.Errorf("storing thesis for theme %s: %w", themeID, err)
	}
	return nil
}

// recentThemeEvents returns up to limit events linked to themeID, most
// recent first.
func recentThemeEvents(ctx context.Context, client *ent.Client, themeID string, limit int) ([]*ent.Event, error) {
	eventIDs, err := client.ThemeEvent.Query().
		Where(themeevent.ThemeIDEQ(themeID)).
		Select(themeevent.FieldEventID).
		Ints(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading theme_event links for %s: %w", themeID, err)
	}
	if len(eventIDs) == 0 {
		return nil, nil
	}

	return client.Event.Query().
		Where(event.IDIn(eventIDs...)).
		Order(ent.Desc(event.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
}

// buildThesisPrompt renders one evidence line per event: type, layer,
// direction, object names, entity IDs, and any magnitude fields present.
func buildThesisPrompt(events []*ent.Event) string {
	var b strings.Builder
	b.WriteString("Evidence (most recent first):\n")
	for _, ev := range events {
		var objectNames, entityIDs []string
		for _, obj := range ev.Objects {
			if name, ok := obj["name"].(string); ok {
				objectNames = append(objectNames, name)
			}
		}
		for _, ref := range ev.Entities {
			if id, ok := ref["entity_id"].(string); ok {
				entityIDs = append(entityIDs, id)
			}
		}
		magnitude, _ := json.Marshal(ev.Magnitude)
		fmt.Fprintf(&b, "- [%s/%s] %s objects=%s entities=%s magnitude=%s\n",
			ev.ConstraintLayer, ev.Direction, ev.EventType,
			strings.Join(objectNames, ","), strings.Join(entityIDs, ","), string(magnitude))
	}
	b.WriteString("\nWrite the thesis as JSON.")
	return b.String()
}
