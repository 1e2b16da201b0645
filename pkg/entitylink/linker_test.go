package entitylink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexWith(entries ...aliasEntry) *Index {
	idx := NewIndex()
	idx.entries = entries
	return idx
}

func TestLinkEntitiesInTextMatchesASCIIWordBoundary(t *testing.T) {
	idx := indexWith(aliasEntry{alias: "TSMC", entityID: "E:company:tsmc"})

	matches := idx.LinkEntitiesInText("TSMC is on allocation.")
	require.Len(t, matches, 1)
	assert.Equal(t, "E:company:tsmc", matches[0].EntityID)

	noMatches := idx.LinkEntitiesInText("XTSMCY is unrelated.")
	assert.Empty(t, noMatches)
}

func TestLinkEntitiesInTextLongestAliasFirst(t *testing.T) {
	idx := indexWith(
		aliasEntry{alias: "Samsung", entityID: "E:company:samsung"},
		aliasEntry{alias: "Samsung Electronics", entityID: "E:company:samsung-electronics"},
	)

	matches := idx.LinkEntitiesInText("Samsung Electronics posted record earnings.")
	require.Len(t, matches, 1)
	assert.Equal(t, "E:company:samsung-electronics", matches[0].EntityID)
}

func TestLinkEntitiesInTextNonASCIISubstringMatch(t *testing.T) {
	idx := indexWith(aliasEntry{alias: "台積電", entityID: "E:company:tsmc"})

	matches := idx.LinkEntitiesInText("市場關注台積電的產能擴張計畫")
	require.Len(t, matches, 1)
	assert.Equal(t, "E:company:tsmc", matches[0].EntityID)
}

func TestLinkEntitiesInTextEachEntityOnlyOnce(t *testing.T) {
	idx := indexWith(aliasEntry{alias: "TSMC", entityID: "E:company:tsmc"})

	matches := idx.LinkEntitiesInText("TSMC raised prices. Later, TSMC confirmed allocation.")
	assert.Len(t, matches, 1)
}

func TestSnippetIsTrimmedAndBounded(t *testing.T) {
	idx := indexWith(aliasEntry{alias: "TSMC", entityID: "E:company:tsmc"})
	longText := "padding before padding before padding before TSMC padding after padding after padding after"

	matches := idx.LinkEntitiesInText(longText)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].ContextSnippet, "TSMC")
	assert.LessOrEqual(t, len(matches[0].ContextSnippet), len(longText))
}
