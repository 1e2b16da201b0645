package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/constraintwatch/constraintwatch/ent"
)

// fetchPDF lists .pdf links from a source's listing page, then downloads
// and extracts text from each, capped at maxPDFsPerSweep. Listing and
// download each run under their own timeout, since a slow PDF download
// shouldn't also starve the time budget for discovering further links.
func (d *Dispatcher) fetchPDF(ctx context.Context, src *ent.Source) (int, error) {
	if src.URL == nil || *src.URL == "" {
		return 0, fmt.Errorf("source %s: fetch_method=pdf requires url", src.ID)
	}

	listCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	listing, err := d.fetchDocument(listCtx, *src.URL)
	cancel()
	if err != nil {
		slog.Error("pdf listing fetch failed", "source", src.ID, "error", err)
		return 0, nil
	}

	links := discoverLinks(listing, *src.URL, maxPDFsPerSweep, acceptPDFLink)

	inserted := 0
	for _, link := range links {
		downloadCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		text, err := d.downloadAndExtractPDF(downloadCtx, link)
		cancel()
		if err != nil {
			slog.Error("pdf download/extract failed", "source", src.ID, "url", link, "error", err)
			continue
		}

		ok, err := d.insertItem(ctx, src.ID, link, "", text, nil)
		if err != nil {
			slog.Error("pdf item insert failed", "source", src.ID, "url", link, "error", err)
			continue
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// downloadAndExtractPDF downloads rawURL to a temp file and extracts its
// plain text. ledongthuc/pdf reads from a local *os.File rather than an
// io.Reader, so the response body is spooled to disk first.
func (d *Dispatcher) downloadAndExtractPDF(ctx context.Context, rawURL string) (string, error) {
	if err := d.waitForDomain(ctx, rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", rawURL, err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "constraintwatch-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %s: %w", rawURL, err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return "", fmt.Errorf("spooling %s to disk: %w", rawURL, err)
	}

	f, r, err := pdf.Open(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", rawURL, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", rawURL, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", fmt.Errorf("reading extracted text from %s: %w", rawURL, err)
	}

	return strings.Join(strings.Fields(buf.String()), " "), nil
}
