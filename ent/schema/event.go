package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Event holds the schema definition for a structured supply-chain
// constraint event extracted from an item by the LLM extractor.
type Event struct {
	ent.Schema
}

// Fields of the Event.
func (Event) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("item_id").
			Immutable(),
		field.Enum("event_type").
			Values("LEAD_TIME_EXTENDED", "ALLOCATION", "PRICE_INCREASE", "CAPEX_ANNOUNCED",
				"CAPACITY_ONLINE", "QUALIFICATION_DELAY", "YIELD_ISSUE", "DISRUPTION",
				"POLICY_RESTRICTION"),
		field.Enum("constraint_layer").
			Values("SILICON_WAFER", "ADV_PACKAGING", "HBM_MEMORY", "SUBSTRATE",
				"POWER_COOLING", "OPTICS_NETWORKING", "EDA_IP", "EQUIPMENT_TOOLS",
				"RARE_EARTH_MATERIALS", "POLICY_EXPORT_CONTROL"),
		field.String("secondary_layer").
			Optional().
			Nillable(),
		field.Enum("direction").
			Values("TIGHTENING", "EASING", "MIXED"),
		field.JSON("entities", []map[string]interface{}{}).
			Optional().
			Comment("[{entity_id, role}]"),
		field.JSON("objects", []map[string]interface{}{}).
			Optional().
			Comment("[{type, name, aliases}]"),
		field.JSON("magnitude", map[string]interface{}{}).
			Optional(),
		field.JSON("timing", map[string]interface{}{}).
			Optional().
			Comment("happened_at, reported_at, expected_relief_window"),
		field.JSON("evidence", map[string]interface{}{}).
			Optional().
			Comment("source_id, source_url, source_tier, language, confidence, snippets"),
		field.JSON("tags", []string{}).
			Optional(),
		field.Float("confidence").
			Default(0.5),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Event.
func (Event) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("item", Item.Type).
			Ref("events").
			Field("item_id").
			Unique().
			Required(),
		edge.To("theme_events", ThemeEvent.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Event.
func (Event) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("constraint_layer"),
		index.Fields("constraint_layer", "created_at"),
		index.Fields("event_type", "direction", "created_at"),
		index.Fields("created_at"),
	}
}

// Annotations of the Event.
func (Event) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
