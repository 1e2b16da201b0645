package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/constraintwatch/constraintwatch/ent"
)

// fetchHTML scrapes a source's listing page for article links, then
// fetches and extracts text from each, capped at maxArticlesPerSweep.
func (d *Dispatcher) fetchHTML(ctx context.Context, src *ent.Source) (int, error) {
	if src.URL == nil || *src.URL == "" {
		return 0, fmt.Errorf("source %s: fetch_method=html requires url", src.ID)
	}

	listing, err := d.fetchDocument(ctx, *src.URL)
	if err != nil {
		slog.Error("html listing fetch failed", "source", src.ID, "error", err)
		return 0, nil
	}

	links := discoverLinks(listing, *src.URL, maxArticlesPerSweep, acceptAnyLink)

	inserted := 0
	for _, link := range links {
		article, err := d.fetchDocument(ctx, link)
		if err != nil {
			slog.Error("html article fetch failed", "source", src.ID, "url", link, "error", err)
			continue
		}

		title := strings.TrimSpace(article.Find("title").First().Text())
		text := articleText(article)

		ok, err := d.insertItem(ctx, src.ID, link, title, text, nil)
		if err != nil {
			slog.Error("html article insert failed", "source", src.ID, "url", link, "error", err)
			continue
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// fetchDocument GETs rawURL through the per-domain rate limiter and
// parses the response as HTML.
func (d *Dispatcher) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := d.waitForDomain(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "ConstraintWatch/1.0 (+supply-chain monitoring)")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

// linkFilter decides whether a discovered href is a candidate worth
// following.
type linkFilter func(href string) bool

func acceptAnyLink(string) bool { return true }

func acceptPDFLink(href string) bool {
	return strings.HasSuffix(strings.ToLower(href), ".pdf")
}

// discoverLinks resolves every a[href] in doc against base, keeps the
// ones accept approves of, dedups, and stops once cap links are found.
func discoverLinks(doc *goquery.Document, base string, cap int, accept linkFilter) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(links) >= cap {
			return false
		}
		href, ok := s.Attr("href")
		if !ok || !accept(href) {
			return true
		}
		resolved, err := baseURL.Parse(href)
		if err != nil {
			return true
		}
		resolved.Fragment = ""
		abs := resolved.String()
		if abs == base {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
		return true
	})
	return links
}

// articleText extracts a readable text body from an article page,
// dropping chrome elements that would otherwise pollute extraction: no
// trafilatura equivalent exists in the dependency set, so this is a
// direct goquery-based approximation of it.
func articleText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, noscript").Remove()

	body := doc.Find("article").First()
	if body.Length() == 0 {
		body = doc.Find("main").First()
	}
	if body.Length() == 0 {
		body = doc.Find("body").First()
	}

	text := body.Text()
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}
