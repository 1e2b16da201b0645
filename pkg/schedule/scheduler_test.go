package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/source"
)

func TestOrderFeedFirstPutsFeedSourcesBeforeOthers(t *testing.T) {
	sources := []*ent.Source{
		{ID: "html-1", FetchMethod: source.FetchMethodHTML},
		{ID: "feed-1", FetchMethod: source.FetchMethodFeed},
		{ID: "pdf-1", FetchMethod: source.FetchMethodPDF},
		{ID: "feed-2", FetchMethod: source.FetchMethodFeed},
	}

	ordered := orderFeedFirst(sources)

	ids := make([]string, len(ordered))
	for i, s := range ordered {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"feed-1", "feed-2", "html-1", "pdf-1"}, ids)
}

func TestOrderFeedFirstPreservesRelativeOrderWithinGroup(t *testing.T) {
	sources := []*ent.Source{
		{ID: "html-a", FetchMethod: source.FetchMethodHTML},
		{ID: "html-b", FetchMethod: source.FetchMethodHTML},
	}

	ordered := orderFeedFirst(sources)
	assert.Equal(t, "html-a", ordered[0].ID)
	assert.Equal(t, "html-b", ordered[1].ID)
}

func TestTryAcquireRejectsConcurrentSameJob(t *testing.T) {
	s := &Scheduler{running: make(map[string]bool)}

	assert.True(t, s.tryAcquire("collect:source-1"))
	assert.False(t, s.tryAcquire("collect:source-1"))

	s.release("collect:source-1")
	assert.True(t, s.tryAcquire("collect:source-1"))
}

func TestTryAcquireTracksJobsIndependently(t *testing.T) {
	s := &Scheduler{running: make(map[string]bool)}

	assert.True(t, s.tryAcquire("collect:source-1"))
	assert.True(t, s.tryAcquire("collect:source-2"))
}
