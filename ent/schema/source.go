package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Source holds the schema definition for a collected content source.
type Source struct {
	ent.Schema
}

// Fields of the Source.
func (Source) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("source_id").
			Unique().
			Immutable(),
		field.String("display_name"),
		field.String("url").
			Optional().
			Nillable(),
		field.String("feed_url").
			Optional().
			Nillable(),
		field.Enum("fetch_method").
			Values("feed", "html", "headless", "pdf", "web_search"),
		field.String("language").
			Default("en"),
		field.Int("tier").
			Default(3).
			Comment("Editorial quality ranking: 1 best, 3 worst"),
		field.Float("reliability").
			Default(0.5),
		field.Float("earliness").
			Default(0.5),
		field.Int("schedule_minutes").
			Default(60),
		field.JSON("layers", []string{}).
			Optional(),
		field.JSON("search_queries", []string{}).
			Optional(),
		field.Enum("status").
			Values("DISCOVERED", "PROVISIONAL", "CONFIRMED", "DISABLED").
			Default("DISCOVERED"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the Source.
func (Source) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("fetch_method"),
		index.Fields("status", "fetch_method"),
	}
}

// Annotations of the Source.
func (Source) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
