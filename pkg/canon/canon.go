// Package canon provides stable, deterministic hashing for URL and content
// deduplication across the collection pipeline.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// dropParams is the fixed set of tracking query parameters stripped during
// URL canonicalization.
var dropParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_content":  {},
	"utm_term":     {},
	"fbclid":       {},
	"gclid":        {},
	"ref":          {},
	"source":       {},
	"mc_cid":       {},
	"mc_eid":       {},
}

// CanonicalizeURL normalizes a URL for dedup: lowercase scheme and host,
// strip a leading www., drop the fragment and tracking params, sort the
// remaining params lexicographically, and strip a trailing slash from the
// path (an empty path becomes "/").
//
// f(f(x)) == f(x) for all inputs: every transformation below is idempotent
// on its own output.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")

	query := u.Query()
	filtered := make(url.Values, len(query))
	keys := make([]string, 0, len(query))
	for k := range query {
		if _, drop := dropParams[strings.ToLower(k)]; drop {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := query[k]
		sort.Strings(vals)
		filtered[k] = vals
	}

	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		path = "/"
	}

	canonical := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     path,
		RawQuery: filtered.Encode(),
	}
	return canonical.String()
}

// URLHash returns the SHA-256 hex digest of the canonicalized URL.
func URLHash(raw string) string {
	return sha256Hex(CanonicalizeURL(raw))
}

// ContentHash returns the SHA-256 hex digest of text with runs of
// whitespace collapsed to single spaces, for cross-source duplicate
// suppression independent of URL.
func ContentHash(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	return sha256Hex(normalized)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
