// Package extract runs the LLM event extractor over items leaving the
// LINKED pipeline stage and persists the resulting structured events (C8).
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/event"
	"github.com/constraintwatch/constraintwatch/pkg/entitydiscover"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
)

// maxChars bounds the prompt cost of a single extraction call.
const maxChars = 12000

// minChars is the shortest text worth sending to the LLM at all.
const minChars = 50

// systemPrompt mirrors the constraint_layer and event_type enums of the
// domain schema, plus a fixed supplier-reference table so the extractor
// can name known key suppliers even when an article omits them by name.
const systemPrompt = `You are an AI supply chain constraint analyst. Your job is to extract structured constraint events from articles about semiconductor, datacenter, and AI infrastructure supply chains.

For each article, extract 0 or more constraint events. Only extract events that describe REAL supply chain constraints — shortages, allocation, lead time changes, capacity expansions, disruptions, yield issues, price changes, or policy restrictions.

DO NOT extract:
- Generic product launch news without supply chain impact
- Opinion pieces without concrete facts
- Hype narratives not anchored in measurable constraints

Each event must have:
- event_type: one of LEAD_TIME_EXTENDED, ALLOCATION, PRICE_INCREASE, CAPEX_ANNOUNCED, CAPACITY_ONLINE, QUALIFICATION_DELAY, YIELD_ISSUE, DISRUPTION, POLICY_RESTRICTION
- constraint_layer (and optional secondary_layer): one of SILICON_WAFER, ADV_PACKAGING, HBM_MEMORY, SUBSTRATE, POWER_COOLING, OPTICS_NETWORKING, EDA_IP, EQUIPMENT_TOOLS, RARE_EARTH_MATERIALS, POLICY_EXPORT_CONTROL
- direction: TIGHTENING, EASING, or MIXED
- entities: list of {entity_id, role} where entity_id is like "E:company:tsmc" and role is SUPPLIER/BUYER/DEMAND_DRIVER/OEM/REGULATOR/LOCATION
  IMPORTANT: Include companies that are KNOWN key suppliers even if not named in the article. Use this reference:
    Glass fiber / glass cloth / T-glass / low-CTE glass -> Nittobo (E:company:nittobo), Nitto Boseki
    ABF substrate film -> Ajinomoto (E:company:ajinomoto), Ajinomoto Fine-Techno
    IC package substrates -> Ibiden (E:company:ibiden), Shinko Electric (E:company:shinko)
    Advanced packaging / CoWoS -> TSMC (E:company:tsmc), Amkor (E:company:amkor)
    HBM -> SK Hynix (E:company:skhynix), Samsung (E:company:samsung_semi), Micron (E:company:micron)
    SiC substrates -> Wolfspeed, ON Semi, STMicro, Rohm
    EUV lithography -> ASML (E:company:asml)
    Wafer fab equipment -> Applied Materials, Lam Research, Tokyo Electron
    GPU / AI accelerators -> NVIDIA (E:company:nvidia), AMD (E:company:amd)
    Power transformers -> Siemens Energy (E:company:siemens_energy), GE Vernova (E:company:ge_vernova), Hitachi Energy
    Datacenter cooling -> Vertiv, Schneider Electric
- objects: list of {type, name, aliases} where type is PRODUCT/COMPONENT/MATERIAL/PROCESS_TECH
- magnitude: concrete numbers when available (lead_time_weeks with from/to, price_change_pct, capex_usd, capacity_delta)
- timing: happened_at (YYYY-MM-DD), reported_at, expected_relief_window
- tags: relevant keywords
- confidence: 0.0-1.0

Pull NUMBERS whenever present. Separate happened_at vs reported_at. Classify direction carefully.

If the article has NO relevant constraint events, return {"events": [], "skipped": true, "skip_reason": "reason"}.

Return valid JSON matching this schema:
{
  "events": [...],
  "skipped": false,
  "skip_reason": null
}`

// Source carries the item's parent source metadata the prompt and
// evidence blob both need.
type Source struct {
	ID       string
	Name     string
	URL      string
	Tier     int
	Language string
}

// rawEvent is the shape an LLM reply's event objects are decoded into
// before per-field schema validation.
type rawEvent struct {
	EventType       string                   `json:"event_type"`
	ConstraintLayer string                   `json:"constraint_layer"`
	SecondaryLayer  string                   `json:"secondary_layer"`
	Direction       string                   `json:"direction"`
	Entities        []map[string]interface{} `json:"entities"`
	Objects         []map[string]interface{} `json:"objects"`
	Magnitude       map[string]interface{}   `json:"magnitude"`
	Timing          map[string]interface{}   `json:"timing"`
	Tags            []string                 `json:"tags"`
	Confidence      float64                  `json:"confidence"`
}

type rawReply struct {
	Events     []rawEvent `json:"events"`
	Skipped    bool       `json:"skipped"`
	SkipReason string     `json:"skip_reason"`
}

var validEventTypes = map[string]struct{}{
	"LEAD_TIME_EXTENDED": {}, "ALLOCATION": {}, "PRICE_INCREASE": {}, "CAPEX_ANNOUNCED": {},
	"CAPACITY_ONLINE": {}, "QUALIFICATION_DELAY": {}, "YIELD_ISSUE": {}, "DISRUPTION": {},
	"POLICY_RESTRICTION": {},
}

var validLayers = map[string]struct{}{
	"SILICON_WAFER": {}, "ADV_PACKAGING": {}, "HBM_MEMORY": {}, "SUBSTRATE": {},
	"POWER_COOLING": {}, "OPTICS_NETWORKING": {}, "EDA_IP": {}, "EQUIPMENT_TOOLS": {},
	"RARE_EARTH_MATERIALS": {}, "POLICY_EXPORT_CONTROL": {},
}

var validDirections = map[string]struct{}{"TIGHTENING": {}, "EASING": {}, "MIXED": {}}

// valid reports whether a decoded event satisfies the closed enum sets. A
// missing or unrecognized value in any required field fails validation;
// invalid events are dropped by the caller rather than blocking the batch.
func (e rawEvent) valid() bool {
	if _, ok := validEventTypes[e.EventType]; !ok {
		return false
	}
	if _, ok := validLayers[e.ConstraintLayer]; !ok {
		return false
	}
	if e.SecondaryLayer != "" {
		if _, ok := validLayers[e.SecondaryLayer]; !ok {
			return false
		}
	}
	if _, ok := validDirections[e.Direction]; !ok {
		return false
	}
	return true
}

// Result is the outcome of a single extraction call.
type Result struct {
	Skipped    bool
	SkipReason string
	Events     []rawEvent
	RawReply   string
}

// ExtractEvents truncates text, invokes the LLM with the extractor system
// prompt in JSON mode, and validates the reply's event objects. Malformed
// events are dropped silently; a JSON parse failure returns a skipped
// Result rather than an error, matching "never blocks others" semantics.
func ExtractEvents(ctx context.Context, client *llm.Client, itemID, text string, source Source) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minChars {
		return Result{Skipped: true, SkipReason: "text_too_short"}, nil
	}

	truncated := text
	if len(truncated) > maxChars {
		truncated = truncated[:maxChars]
	}

	userPrompt := fmt.Sprintf(
		"Source: %s (tier %d, %s)\nURL: %s\n\nArticle text:\n%s\n\nExtract constraint events as JSON.",
		source.Name, source.Tier, source.Language, source.URL, truncated,
	)

	raw, err := client.Extract(ctx, userPrompt, systemPrompt, llm.WithJSONMode())
	if err != nil {
		slog.Error("llm extraction failed", "item_id", itemID, "error", err)
		return Result{Skipped: true, SkipReason: fmt.Sprintf("llm_error: %v", err)}, nil
	}

	var reply rawReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		slog.Warn("invalid json from llm extractor", "item_id", itemID)
		return Result{Skipped: true, SkipReason: "invalid_json", RawReply: raw}, nil
	}

	if reply.Skipped {
		reason := reply.SkipReason
		if reason == "" {
			reason = "llm_skipped"
		}
		return Result{Skipped: true, SkipReason: reason, RawReply: raw}, nil
	}

	result := Result{RawReply: raw}
	for _, ev := range reply.Events {
		if !ev.valid() {
			slog.Debug("dropping invalid extracted event", "item_id", itemID, "event_type", ev.EventType)
			continue
		}
		result.Events = append(result.Events, ev)
	}
	return result, nil
}

// StoreEvents persists each validated event with evidence attached from
// source metadata, returning the count stored. Any entity_id an event
// references that is not yet in the catalog is discovered on the fly, so
// an entity the linker's alias index missed still gets a DISCOVERED row.
func StoreEvents(ctx context.Context, dbClient *ent.Client, itemID string, events []rawEvent, source Source) (int, error) {
	stored := 0
	for _, ev := range events {
		if err := discoverReferencedEntities(ctx, dbClient, itemID, ev); err != nil {
			slog.Warn("entity discovery from extracted event failed", "item_id", itemID, "error", err)
		}

		evidence := map[string]interface{}{
			"source_id":   source.ID,
			"source_url":  source.URL,
			"source_tier": source.Tier,
			"language":    source.Language,
			"confidence":  ev.Confidence,
		}

		create := dbClient.Event.Create().
			SetItemID(itemID).
			SetEventType(event.EventType(ev.EventType)).
			SetConstraintLayer(event.ConstraintLayer(ev.ConstraintLayer)).
			SetDirection(event.Direction(ev.Direction)).
			SetEntities(ev.Entities).
			SetObjects(ev.Objects).
			SetMagnitude(ev.Magnitude).
			SetTiming(ev.Timing).
			SetEvidence(evidence).
			SetConfidence(ev.Confidence)
		if ev.SecondaryLayer != "" {
			create = create.SetSecondaryLayer(ev.SecondaryLayer)
		}
		if ev.Tags != nil {
			create = create.SetTags(ev.Tags)
		}

		if _, err := create.Save(ctx); err != nil {
			return stored, fmt.Errorf("storing event for item %s: %w", itemID, err)
		}
		stored++
	}
	return stored, nil
}

// discoverReferencedEntities ensures every entity_id an event's entities
// list names exists, creating a DISCOVERED row from the referenced ID's
// "E:<type>:<slug>" shape when the linker's alias index never matched it.
func discoverReferencedEntities(ctx context.Context, client *ent.Client, itemID string, ev rawEvent) error {
	for _, ref := range ev.Entities {
		id, _ := ref["entity_id"].(string)
		if id == "" {
			continue
		}
		role, _ := ref["role"].(string)

		parts := strings.SplitN(id, ":", 3)
		name := id
		typ := "company"
		if len(parts) == 3 {
			typ = parts[1]
			name = strings.ReplaceAll(parts[2], "_", " ")
		}

		if _, err := entitydiscover.DiscoverEntity(ctx, client, entitydiscover.Input{
			Name:       name,
			Type:       typ,
			ItemID:     itemID,
			RoleHint:   role,
			LayerHint:  ev.ConstraintLayer,
			IDOverride: id,
		}); err != nil {
			return fmt.Errorf("discovering referenced entity %s: %w", id, err)
		}
	}
	return nil
}
