package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ThemeEvent holds the schema definition for the (theme_id, event_id) link
// between a Theme and one of its evidence Events.
type ThemeEvent struct {
	ent.Schema
}

// Fields of the ThemeEvent.
func (ThemeEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("theme_id").
			Immutable(),
		field.Int("event_id").
			Immutable(),
	}
}

// Edges of the ThemeEvent.
func (ThemeEvent) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("theme", Theme.Type).
			Ref("theme_events").
			Field("theme_id").
			Unique().
			Required(),
		edge.From("event", Event.Type).
			Ref("theme_events").
			Field("event_id").
			Unique().
			Required(),
	}
}

// Indexes of the ThemeEvent.
func (ThemeEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("theme_id", "event_id").
			Unique(),
		index.Fields("event_id"),
	}
}

// Annotations of the ThemeEvent.
func (ThemeEvent) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
