// Package fetch dispatches a source to the strategy matching its
// fetch_method and runs the common insert path shared by all of them:
// resolve a candidate URL, dedup on url_hash, fetch and extract text,
// dedup again on content_hash, then insert idempotently.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/source"
	"github.com/constraintwatch/constraintwatch/pkg/search"
)

// Per-sweep budget caps. These bound amplification from a single
// dispatch: a misbehaving feed or a search API returning a flood of
// results can't blow up one sweep's work.
const (
	maxPDFsPerSweep      = 10
	maxArticlesPerSweep  = 20
	maxSearchQueriesPerSweep = 3
)

// Config holds the environment-sourced settings a Dispatcher needs.
type Config struct {
	// SerperAPIKey authenticates web_search sources against Serper.dev.
	// A web_search source with no key configured is skipped, not failed.
	SerperAPIKey string

	// RequestsPerSecond bounds outbound HTTP requests to any single
	// domain (http_rate_limit_per_domain).
	RequestsPerSecond float64

	// HTTPTimeoutSeconds bounds each individual HTTP round trip.
	HTTPTimeoutSeconds int

	// QueryCursorPath is where the web_search query rotation persists
	// its per-source cursor.
	QueryCursorPath string
}

// DefaultConfig returns conservative defaults for an unconfigured
// environment.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond:  1,
		HTTPTimeoutSeconds: 20,
		QueryCursorPath:    "data/query_cursors.json",
	}
}

// Dispatcher fetches new items for a single source per call, using one
// shared HTTP client and a rate limiter per domain.
type Dispatcher struct {
	db        *ent.Client
	http      *http.Client
	cfg       Config
	search    *search.Store
	serperURL string

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewDispatcher constructs a Dispatcher bound to db.
func NewDispatcher(db *ent.Client, cfg Config) *Dispatcher {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 20
	}
	return &Dispatcher{
		db:        db,
		http:      &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second},
		cfg:       cfg,
		search:    search.NewStore(cfg.QueryCursorPath),
		serperURL: serperSearchURL,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Dispatch runs the strategy matching src's fetch_method and returns the
// count of newly inserted items. Strategy-internal failures are logged
// and do not surface as an error; the only errors Dispatch returns are
// structural (a misconfigured source, or a cancelled context).
func (d *Dispatcher) Dispatch(ctx context.Context, src *ent.Source) (int, error) {
	switch src.FetchMethod {
	case source.FetchMethodFeed:
		return d.fetchFeed(ctx, src)
	case source.FetchMethodHTML:
		return d.fetchHTML(ctx, src)
	case source.FetchMethodHeadless:
		return d.fetchHeadless(ctx, src)
	case source.FetchMethodPDF:
		return d.fetchPDF(ctx, src)
	case source.FetchMethodWebSearch:
		return d.fetchWebSearch(ctx, src)
	default:
		return 0, fmt.Errorf("source %s: unrecognized fetch_method %q", src.ID, src.FetchMethod)
	}
}

// waitForDomain blocks until the per-domain limiter for rawURL's host
// admits one more request, or ctx is cancelled.
func (d *Dispatcher) waitForDomain(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return d.limiterFor(u.Host).Wait(ctx)
}

func (d *Dispatcher) limiterFor(host string) *rate.Limiter {
	d.limiterMu.Lock()
	defer d.limiterMu.Unlock()
	l, ok := d.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(d.cfg.RequestsPerSecond), 1)
		d.limiters[host] = l
	}
	return l
}
