package search

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRotatesThroughAllQueries(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cursors.json"))
	queries := []string{"a", "b", "c"}

	first := store.Next("src-1", queries, 2)
	assert.Equal(t, []string{"a", "b"}, first)

	second := store.Next("src-1", queries, 2)
	assert.Equal(t, []string{"c", "a"}, second)
}

func TestNextTracksCursorsIndependentlyPerSource(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cursors.json"))
	queries := []string{"x", "y"}

	store.Next("src-1", queries, 1)
	secondSourceFirst := store.Next("src-2", queries, 1)
	assert.Equal(t, []string{"x"}, secondSourceFirst)
}

func TestNextClampsCountToQueryListLength(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cursors.json"))
	result := store.Next("src-1", []string{"only"}, 5)
	assert.Equal(t, []string{"only"}, result)
}

func TestNextEmptyQueriesReturnsNil(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cursors.json"))
	assert.Empty(t, store.Next("src-1", nil, 3))
}

func TestNewStorePersistsCursorAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursors.json")
	store := NewStore(path)
	queries := []string{"a", "b", "c"}
	store.Next("src-1", queries, 2)

	reloaded := NewStore(path)
	next := reloaded.Next("src-1", queries, 1)
	require.Len(t, next, 1)
	assert.Equal(t, "c", next[0])
}
