package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/constraintwatch/constraintwatch/ent"
)

// fetchFeed parses a source's RSS/Atom feed and inserts one item per
// entry, preferring the entry's full content over its summary.
func (d *Dispatcher) fetchFeed(ctx context.Context, src *ent.Source) (int, error) {
	if src.FeedURL == nil || *src.FeedURL == "" {
		return 0, fmt.Errorf("source %s: fetch_method=feed requires feed_url", src.ID)
	}

	if err := d.waitForDomain(ctx, *src.FeedURL); err != nil {
		return 0, err
	}

	parser := gofeed.NewParser()
	parser.Client = d.http
	feed, err := parser.ParseURLWithContext(*src.FeedURL, ctx)
	if err != nil {
		slog.Error("feed fetch failed", "source", src.ID, "feed_url", *src.FeedURL, "error", err)
		return 0, nil
	}

	inserted := 0
	for _, entry := range feed.Items {
		text := entryText(entry)
		if text == "" {
			continue
		}

		var publishedAt *time.Time
		if entry.PublishedParsed != nil {
			publishedAt = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			publishedAt = entry.UpdatedParsed
		}

		ok, err := d.insertItem(ctx, src.ID, entry.Link, entry.Title, text, publishedAt)
		if err != nil {
			slog.Error("feed entry insert failed", "source", src.ID, "url", entry.Link, "error", err)
			continue
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// entryText prefers a feed entry's full content over its summary, and
// strips any embedded HTML markup from either.
func entryText(entry *gofeed.Item) string {
	raw := entry.Content
	if raw == "" {
		raw = entry.Description
	}
	if raw == "" {
		return ""
	}
	return htmlToPlainText(raw)
}

// htmlToPlainText strips markup from an HTML fragment, used for feed
// entry bodies that arrive as HTML rather than a full document.
func htmlToPlainText(htmlFragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlFragment))
	if err != nil {
		return strings.TrimSpace(htmlFragment)
	}
	fields := strings.Fields(doc.Text())
	return strings.Join(fields, " ")
}
