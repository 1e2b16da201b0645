package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/item"
	"github.com/constraintwatch/constraintwatch/pkg/canon"
)

// insertItem runs the common insert path every strategy shares: skip on
// empty text, dedup on url_hash then content_hash, and insert COLLECTED.
// A url_hash conflict (another sweep or strategy won the race) is
// silently ignored, matching the ON CONFLICT DO NOTHING semantics of the
// original insert path.
func (d *Dispatcher) insertItem(ctx context.Context, sourceID, rawURL, title, text string, publishedAt *time.Time) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	urlHash := canon.URLHash(rawURL)
	urlExists, err := d.db.Item.Query().Where(item.URLHashEQ(urlHash)).Exist(ctx)
	if err != nil {
		return false, fmt.Errorf("checking url_hash dedup for %s: %w", rawURL, err)
	}
	if urlExists {
		return false, nil
	}

	contentHash := canon.ContentHash(text)
	contentExists, err := d.db.Item.Query().Where(item.ContentHashEQ(contentHash)).Exist(ctx)
	if err != nil {
		return false, fmt.Errorf("checking content_hash dedup for %s: %w", rawURL, err)
	}
	if contentExists {
		return false, nil
	}

	create := d.db.Item.Create().
		SetID(uuid.NewString()).
		SetSourceID(sourceID).
		SetURL(rawURL).
		SetURLHash(urlHash).
		SetContentHash(contentHash).
		SetRawText(text)
	if title != "" {
		create = create.SetTitle(title)
	}
	if publishedAt != nil {
		create = create.SetPublishedAt(*publishedAt)
	}

	if _, err := create.Save(ctx); err != nil {
		if ent.IsConstraintError(err) {
			return false, nil
		}
		return false, fmt.Errorf("inserting item %s: %w", rawURL, err)
	}
	return true, nil
}
