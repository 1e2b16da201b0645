package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Alert holds the schema definition for a triaged outbound notification.
// Immutable after insertion.
type Alert struct {
	ent.Schema
}

// Fields of the Alert.
func (Alert) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.Enum("alert_type").
			Values("NEW_CANDIDATE", "INFLECTION", "ACTIONABLE_BRIEFING", "DAILY_DIGEST").
			Immutable(),
		field.String("theme_id").
			Optional().
			Nillable().
			Immutable(),
		field.JSON("payload", map[string]interface{}{}).
			Optional().
			Immutable(),
		field.Int64("telegram_message_id").
			Optional().
			Nillable().
			Immutable(),
		field.String("dedup_key").
			Unique().
			Immutable(),
		field.Time("sent_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Alert.
func (Alert) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("theme", Theme.Type).
			Ref("alerts").
			Field("theme_id").
			Unique(),
	}
}

// Indexes of the Alert.
func (Alert) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("alert_type", "sent_at"),
		index.Fields("sent_at"),
	}
}

// Annotations of the Alert.
func (Alert) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
