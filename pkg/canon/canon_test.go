package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeURLIsIdempotent(t *testing.T) {
	urls := []string{
		"https://WWW.Example.com/article/?utm_source=feed&b=2&a=1",
		"http://example.com/article/",
		"https://example.com/article#section-2",
	}
	for _, u := range urls {
		once := CanonicalizeURL(u)
		twice := CanonicalizeURL(once)
		assert.Equal(t, once, twice, "canonicalization must be idempotent for %q", u)
	}
}

func TestCanonicalizeURLEquivalentForms(t *testing.T) {
	base := CanonicalizeURL("https://example.com/article/path?a=1&b=2")
	variants := []string{
		"https://example.com/article/path?a=1&b=2&utm_source=newsletter",
		"https://example.com/article/path?a=1&b=2#fragment",
		"HTTPS://WWW.EXAMPLE.COM/article/path?a=1&b=2",
		"https://example.com/article/path/?b=2&a=1",
	}
	for _, v := range variants {
		assert.Equal(t, base, CanonicalizeURL(v), "variant %q should canonicalize identically", v)
	}
}

func TestURLHashEqualForEquivalentURLs(t *testing.T) {
	h1 := URLHash("https://example.com/a?utm_source=x&ref=y")
	h2 := URLHash("https://www.example.com/a/#top")
	assert.Equal(t, h1, h2)
}

func TestContentHashInvariantUnderWhitespace(t *testing.T) {
	a := ContentHash("TSMC   is\ton\nallocation.")
	b := ContentHash("TSMC is on allocation.")
	assert.Equal(t, a, b)
}

func TestContentHashDiffersForDifferentContent(t *testing.T) {
	assert.NotEqual(t, ContentHash("foo"), ContentHash("bar"))
}
