package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// These indexes enable efficient full-text search on collected item text
// and generated theme theses, neither of which ent's schema DSL can express.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	// GIN index for item raw_text/text_en full-text search
	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_items_text_en_gin
		ON items USING gin(to_tsvector('english', COALESCE(text_en, raw_text)))`)
	if err != nil {
		return fmt.Errorf("failed to create item text GIN index: %w", err)
	}

	// GIN index for theme thesis JSON (one_liner + why_now) full-text search
	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_themes_thesis_gin
		ON themes USING gin(to_tsvector('english', COALESCE(thesis->>'one_liner', '')))`)
	if err != nil {
		return fmt.Errorf("failed to create theme thesis GIN index: %w", err)
	}

	return nil
}
