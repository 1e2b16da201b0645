package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/constraintwatch/constraintwatch/ent"
)

const serperSearchURL = "https://google.serper.dev/search"

// languageSearchParams maps a source's language to the Serper/Google
// search params that localize results to it, falling back to (en, us)
// for anything unrecognized.
var languageSearchParams = map[string]struct{ hl, gl string }{
	"en":    {"en", "us"},
	"ja":    {"ja", "jp"},
	"ko":    {"ko", "kr"},
	"zh":    {"zh-cn", "cn"},
	"es":    {"es", "mx"},
	"pt":    {"pt-br", "br"},
	"de":    {"de", "de"},
	"hi":    {"hi", "in"},
	"zh-tw": {"zh-tw", "tw"},
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	HL  string `json:"hl"`
	GL  string `json:"gl"`
	TBS string `json:"tbs"`
}

type serperResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	Organic []serperResult `json:"organic"`
}

// fetchWebSearch runs up to maxSearchQueriesPerSweep of a source's
// configured search_queries against Serper.dev, and inserts each organic
// result that isn't already known. A source with no queries configured,
// or a deployment with no Serper key, is skipped rather than failed.
func (d *Dispatcher) fetchWebSearch(ctx context.Context, src *ent.Source) (int, error) {
	if d.cfg.SerperAPIKey == "" {
		slog.Debug("web_search skipped, no serper_api_key configured", "source", src.ID)
		return 0, nil
	}
	if len(src.SearchQueries) == 0 {
		return 0, nil
	}

	queries := d.search.Next(src.ID, src.SearchQueries, maxSearchQueriesPerSweep)

	inserted := 0
	for _, query := range queries {
		results, err := d.serperSearch(ctx, query, src.Language)
		if err != nil {
			slog.Error("serper search failed", "source", src.ID, "query", query, "error", err)
			continue
		}

		for _, result := range results {
			if result.Link == "" {
				continue
			}

			text := result.Snippet
			if article, err := d.fetchDocument(ctx, result.Link); err == nil {
				if extracted := articleText(article); len(extracted) > len(text) {
					text = extracted
				}
			}

			ok, err := d.insertItem(ctx, src.ID, result.Link, result.Title, text, nil)
			if err != nil {
				slog.Error("web search result insert failed", "source", src.ID, "url", result.Link, "error", err)
				continue
			}
			if ok {
				inserted++
			}
		}
	}
	return inserted, nil
}

// serperSearch calls the Serper.dev Google Search API for a single
// query, restricted to results from the past week.
func (d *Dispatcher) serperSearch(ctx context.Context, query, language string) ([]serperResult, error) {
	params, ok := languageSearchParams[language]
	if !ok {
		params = languageSearchParams["en"]
	}

	body, err := json.Marshal(serperRequest{
		Q:   query,
		Num: 20,
		HL:  params.hl,
		GL:  params.gl,
		TBS: "qdr:w",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.serperURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", d.cfg.SerperAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling serper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding serper response: %w", err)
	}
	return parsed.Organic, nil
}
