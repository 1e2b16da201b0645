package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// EntityMention holds the schema definition for a single occurrence of an
// entity in an item's text. Additive only: never updated or deleted.
type EntityMention struct {
	ent.Schema
}

// Fields of the EntityMention.
func (EntityMention) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("entity_id").
			Immutable(),
		field.String("item_id").
			Immutable(),
		field.String("context_snippet").
			Immutable(),
		field.String("layer_hint").
			Optional().
			Nillable().
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the EntityMention.
func (EntityMention) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("entity", Entity.Type).
			Ref("mentions").
			Field("entity_id").
			Unique().
			Required(),
		edge.From("item", Item.Type).
			Ref("mentions").
			Field("item_id").
			Unique().
			Required(),
	}
}

// Indexes of the EntityMention.
func (EntityMention) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("entity_id"),
		index.Fields("item_id"),
		index.Fields("entity_id", "created_at"),
	}
}

// Annotations of the EntityMention.
func (EntityMention) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
