package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEventsSkipsTextUnderMinChars(t *testing.T) {
	result, err := ExtractEvents(context.Background(), nil, "item-1", "too short", Source{})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "text_too_short", result.SkipReason)
}

func TestRawEventValidRejectsUnknownEnumValues(t *testing.T) {
	valid := rawEvent{EventType: "ALLOCATION", ConstraintLayer: "ADV_PACKAGING", Direction: "TIGHTENING"}
	assert.True(t, valid.valid())

	badType := valid
	badType.EventType = "MADE_UP"
	assert.False(t, badType.valid())

	badLayer := valid
	badLayer.ConstraintLayer = "MADE_UP"
	assert.False(t, badLayer.valid())

	badSecondary := valid
	badSecondary.SecondaryLayer = "MADE_UP"
	assert.False(t, badSecondary.valid())

	badDirection := valid
	badDirection.Direction = "SIDEWAYS"
	assert.False(t, badDirection.valid())
}
