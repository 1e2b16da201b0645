// Package theme builds event clusters into persistent themes, scores
// them, and runs the forward-only lifecycle/thesis pipeline (C10-C12).
package theme

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/event"
)

const clusterWindow = 30 * 24 * time.Hour

const generalObjectKey = "_general"

// Cluster is a candidate grouping of events sharing a constraint_layer and
// object name, built fresh every cycle before scoring and lifecycle
// promotion. secondary_layer is deliberately excluded: clustering
// partitions strictly by the primary constraint_layer.
type Cluster struct {
	Key             string
	ConstraintLayer string
	Events          []*ent.Event
}

type clusterKey struct {
	layer, object string
}

// BuildClusters loads every event from the last 30 days, partitions by
// constraint_layer, and within a layer groups events sharing a lowercased,
// trimmed object name into "<layer>:<object>" clusters, falling back to
// "<layer>:_general" for events with no objects. An event with N distinct
// object names contributes to N candidate clusters. Clusters with fewer
// than 2 distinct events are dropped.
func BuildClusters(ctx context.Context, client *ent.Client, now time.Time) ([]Cluster, error) {
	events, err := client.Event.Query().
		Where(event.CreatedAtGTE(now.Add(-clusterWindow))).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading events for clustering: %w", err)
	}

	grouped := make(map[clusterKey]map[int]*ent.Event)

	for _, ev := range events {
		layer := string(ev.ConstraintLayer)
		names := objectNames(ev)
		if len(names) == 0 {
			addToCluster(grouped, clusterKey{layer: layer, object: generalObjectKey}, ev)
			continue
		}
		for _, name := range names {
			addToCluster(grouped, clusterKey{layer: layer, object: name}, ev)
		}
	}

	var clusters []Cluster
	for k, evMap := range grouped {
		if len(evMap) < 2 {
			continue
		}
		evs := make([]*ent.Event, 0, len(evMap))
		for _, ev := range evMap {
			evs = append(evs, ev)
		}
		clusters = append(clusters, Cluster{
			Key:             fmt.Sprintf("%s:%s", k.layer, k.object),
			ConstraintLayer: k.layer,
			Events:          evs,
		})
	}
	return clusters, nil
}

func addToCluster(grouped map[clusterKey]map[int]*ent.Event, k clusterKey, ev *ent.Event) {
	bucket, ok := grouped[k]
	if !ok {
		bucket = make(map[int]*ent.Event)
		grouped[k] = bucket
	}
	bucket[ev.ID] = ev
}

// objectNames returns the distinct lowercased, whitespace-trimmed object
// names attached to an event.
func objectNames(ev *ent.Event) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, obj := range ev.Objects {
		raw, ok := obj["name"].(string)
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
