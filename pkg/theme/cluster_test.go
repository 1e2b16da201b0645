package theme

import (
	"testing"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/stretchr/testify/assert"
)

func TestObjectNamesLowercasesTrimsAndDedupes(t *testing.T) {
	ev := &ent.Event{
		Objects: []map[string]interface{}{
			{"name": "  CoWoS  "},
			{"name": "cowos"},
			{"name": "HBM3e"},
			{"type": "PRODUCT"},
		},
	}
	assert.Equal(t, []string{"cowos", "hbm3e"}, objectNames(ev))
}

func TestObjectNamesEmptyWhenNoObjects(t *testing.T) {
	ev := &ent.Event{}
	assert.Empty(t, objectNames(ev))
}
