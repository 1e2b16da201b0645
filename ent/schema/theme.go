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

// Theme holds the schema definition for a persistent cluster of related
// events with a living tightening score and lifecycle status.
type Theme struct {
	ent.Schema
}

// Fields of the Theme.
func (Theme) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("theme_id").
			Unique().
			Immutable().
			Comment("Form T:<namespace>:<slug>"),
		field.String("name"),
		field.Enum("constraint_layer").
			Values("SILICON_WAFER", "ADV_PACKAGING", "HBM_MEMORY", "SUBSTRATE",
				"POWER_COOLING", "OPTICS_NETWORKING", "EDA_IP", "EQUIPMENT_TOOLS",
				"RARE_EARTH_MATERIALS", "POLICY_EXPORT_CONTROL"),
		field.Enum("status").
			Values("CANDIDATE", "ACTIVE", "MATURE", "FADING").
			Default("CANDIDATE"),
		field.Float("velocity_score").Default(0),
		field.Float("breadth_score").Default(0),
		field.Float("quality_score").Default(0),
		field.Float("allocation_score").Default(0),
		field.Float("novelty_score").Default(0),
		field.Float("tightening_score").Default(0),
		field.Int("event_count").Default(0),
		field.Int("tightening_count").Default(0),
		field.Int("easing_count").Default(0),
		field.Int("unique_entities").Default(0),
		field.Int("unique_sources").Default(0),
		field.JSON("thesis", map[string]interface{}{}).
			Optional(),
		field.Time("first_seen_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Edges of the Theme.
func (Theme) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("theme_events", ThemeEvent.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("alerts", Alert.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Theme.
func (Theme) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("constraint_layer"),
		index.Fields("status", "tightening_score"),
	}
}

// Annotations of the Theme.
func (Theme) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
