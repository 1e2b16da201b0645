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

// Entity holds the schema definition for a node in the domain entity catalog
// (companies, facilities, products, materials, geographies, ...).
type Entity struct {
	ent.Schema
}

// Fields of the Entity.
func (Entity) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("entity_id").
			Unique().
			Immutable().
			Comment("Form E:<type>:<slug>"),
		field.String("canonical_name"),
		field.Enum("type").
			Values("COMPANY", "FACILITY", "PRODUCT", "COMPONENT", "MATERIAL",
				"PROCESS_TECH", "BUYER_CLASS", "GEO", "POLICY_PROGRAM", "INDEX"),
		field.JSON("aliases", map[string][]string{}).
			Optional().
			Comment("Language code -> alias strings"),
		field.JSON("tickers", []string{}).
			Optional(),
		field.JSON("roles", []string{}).
			Optional(),
		field.JSON("layers", []string{}).
			Optional(),
		field.String("ring").
			Optional().
			Nillable(),
		field.String("geo").
			Optional().
			Nillable(),
		field.Enum("status").
			Values("DISCOVERED", "PROVISIONAL", "CONFIRMED").
			Default("DISCOVERED"),
		field.Int("mention_count").
			Default(0),
		field.String("discovered_from_item").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Edges of the Entity.
func (Entity) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("mentions", EntityMention.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Entity.
func (Entity) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("type"),
		index.Fields("canonical_name"),
	}
}

// Annotations of the Entity.
func (Entity) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
