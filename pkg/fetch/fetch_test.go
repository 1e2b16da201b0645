package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDiscoverLinksResolvesAndDedups(t *testing.T) {
	html := `<html><body>
		<a href="/articles/one">One</a>
		<a href="/articles/two">Two</a>
		<a href="/articles/one">One again</a>
		<a href="https://other.example.com/three">Three</a>
	</body></html>`
	doc := mustDoc(t, html)

	links := discoverLinks(doc, "https://news.example.com/", 10, acceptAnyLink)

	assert.Equal(t, []string{
		"https://news.example.com/articles/one",
		"https://news.example.com/articles/two",
		"https://other.example.com/three",
	}, links)
}

func TestDiscoverLinksRespectsCap(t *testing.T) {
	html := `<html><body><a href="/a">a</a><a href="/b">b</a><a href="/c">c</a></body></html>`
	doc := mustDoc(t, html)

	links := discoverLinks(doc, "https://news.example.com/", 2, acceptAnyLink)
	assert.Len(t, links, 2)
}

func TestDiscoverLinksFiltersPDFOnly(t *testing.T) {
	html := `<html><body>
		<a href="/report.pdf">Report</a>
		<a href="/index.html">Index</a>
	</body></html>`
	doc := mustDoc(t, html)

	links := discoverLinks(doc, "https://example.com/", 10, acceptPDFLink)
	assert.Equal(t, []string{"https://example.com/report.pdf"}, links)
}

func TestArticleTextDropsChromeElements(t *testing.T) {
	html := `<html><body>
		<nav>Navigation</nav>
		<article>TSMC extended lead times for advanced packaging.</article>
		<footer>Footer text</footer>
	</body></html>`
	doc := mustDoc(t, html)

	text := articleText(doc)
	assert.Contains(t, text, "TSMC extended lead times")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer text")
}

func TestHTMLToPlainTextStripsMarkup(t *testing.T) {
	out := htmlToPlainText("<p>Samsung <b>raised</b> DRAM prices.</p>")
	assert.Equal(t, "Samsung raised DRAM prices.", out)
}

func TestSerperSearchParsesOrganicResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[{"title":"t","link":"https://example.com/a","snippet":"s"}]}`))
	}))
	defer server.Close()

	d := NewDispatcher(nil, Config{SerperAPIKey: "test-key", HTTPTimeoutSeconds: 5})
	d.serperURL = server.URL

	results, err := d.serperSearch(context.Background(), "export controls", "en")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/a", results[0].Link)
}

func TestSerperSearchUnknownLanguageFallsBackToEnglish(t *testing.T) {
	var gotHL, gotGL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req serperRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotHL, gotGL = req.HL, req.GL
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[]}`))
	}))
	defer server.Close()

	d := NewDispatcher(nil, Config{SerperAPIKey: "test-key", HTTPTimeoutSeconds: 5})
	d.serperURL = server.URL

	_, err := d.serperSearch(context.Background(), "q", "xx")
	require.NoError(t, err)
	assert.Equal(t, "en", gotHL)
	assert.Equal(t, "us", gotGL)
}
