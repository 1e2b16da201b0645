// Package entitylink implements the in-memory alias index and the entity
// linker that matches raw text against the domain entity catalog (C6).
package entitylink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/constraintwatch/constraintwatch/ent"
)

// aliasEntry pairs an alias string with the entity it resolves to. Aliases
// are matched longest-first so specific names take precedence over
// substrings of more general ones.
type aliasEntry struct {
	alias    string
	entityID string
}

// Index is a read-mostly, write-rarely map from lowercased alias to
// entity_id. Readers observe a consistent snapshot; writers replace the
// backing slice wholesale under a mutex, per spec.md §9's concurrency note.
type Index struct {
	mu      sync.RWMutex
	entries []aliasEntry
}

// NewIndex returns an empty index. Call Rebuild before first use.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild reloads the index from every entity's canonical name plus the
// union of its alias lists across languages. Must be called whenever
// discovery or promotion changes the catalog (C7).
func (idx *Index) Rebuild(ctx context.Context, client *ent.Client) error {
	entities, err := client.Entity.Query().All(ctx)
	if err != nil {
		return fmt.Errorf("loading entities for alias index: %w", err)
	}

	entries := make([]aliasEntry, 0, len(entities)*2)
	seen := make(map[string]struct{})

	addAlias := func(alias, entityID string) {
		if alias == "" {
			return
		}
		key := alias
		if _, ok := seen[key+"\x00"+entityID]; ok {
			return
		}
		seen[key+"\x00"+entityID] = struct{}{}
		entries = append(entries, aliasEntry{alias: alias, entityID: entityID})
	}

	for _, e := range entities {
		addAlias(e.CanonicalName, e.ID)
		for _, aliasList := range e.Aliases {
			for _, a := range aliasList {
				addAlias(a, e.ID)
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return len(entries[i].alias) > len(entries[j].alias)
	})

	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()
	return nil
}

// snapshot returns the current alias entries under a read lock.
func (idx *Index) snapshot() []aliasEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.entries
}
