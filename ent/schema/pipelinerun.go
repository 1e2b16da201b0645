package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PipelineRun holds the schema definition for an audit record of a single
// stage's execution within a sweep. Read-only once finished.
type PipelineRun struct {
	ent.Schema
}

// Fields of the PipelineRun.
func (PipelineRun) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("stage").
			Immutable().
			Comment("e.g. COLLECTED, NORMALIZED, LINKED, theme_cycle, triage"),
		field.Int("items_processed").
			Default(0),
		field.Int("items_errored").
			Default(0),
		field.Time("started_at").
			Default(time.Now).
			Immutable(),
		field.Time("finished_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the PipelineRun.
func (PipelineRun) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("stage", "started_at"),
	}
}

// Annotations of the PipelineRun.
func (PipelineRun) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
