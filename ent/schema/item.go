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

// Item holds the schema definition for a collected content item moving
// through the pipeline stage machine.
type Item struct {
	ent.Schema
}

// Fields of the Item.
func (Item) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("item_id").
			Unique().
			Immutable(),
		field.String("source_id").
			Immutable(),
		field.String("url"),
		field.String("url_hash").
			Unique(),
		field.String("content_hash").
			Optional().
			Nillable(),
		field.String("title").
			Optional(),
		field.Text("raw_text").
			Optional(),
		field.String("language").
			Optional(),
		field.Text("text_en").
			Optional().
			Nillable(),
		field.Float("translation_confidence").
			Optional().
			Nillable(),
		field.Time("published_at").
			Optional().
			Nillable(),
		field.Time("fetched_at").
			Default(time.Now).
			Immutable(),
		field.Enum("pipeline_status").
			Values("COLLECTED", "NORMALIZED", "LINKED", "EXTRACTED", "DONE", "SKIPPED", "ERROR").
			Default("COLLECTED"),
		field.String("pipeline_error").
			Optional().
			Nillable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Edges of the Item.
func (Item) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("mentions", EntityMention.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("events", Event.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Item.
func (Item) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("source_id"),
		index.Fields("pipeline_status", "fetched_at"),
		index.Fields("content_hash").
			Unique().
			Annotations(entsql.IndexWhere("content_hash IS NOT NULL")),
	}
}

// Annotations of the Item.
func (Item) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
