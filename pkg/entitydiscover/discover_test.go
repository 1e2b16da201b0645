package entitydiscover

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/constraintwatch/constraintwatch/ent/entity"
)

func TestNormalizeTypeKnownValues(t *testing.T) {
	assert.Equal(t, entity.TypeFACILITY, NormalizeType("facility"))
	assert.Equal(t, entity.TypeGEO, NormalizeType("Location"))
	assert.Equal(t, entity.TypePOLICY_PROGRAM, NormalizeType("REGULATOR"))
}

func TestNormalizeTypeUnknownFallsBackToCompany(t *testing.T) {
	assert.Equal(t, entity.TypeCOMPANY, NormalizeType("spaceship"))
	assert.Equal(t, entity.TypeCOMPANY, NormalizeType(""))
}

func TestSlugifyCollapsesAndTrims(t *testing.T) {
	assert.Equal(t, "tsmc", Slugify("TSMC"))
	assert.Equal(t, "taiwan_semiconductor", Slugify("  Taiwan, Semiconductor! "))
}

func TestSlugifyTruncatesToFiftyChars(t *testing.T) {
	long := "a very long entity name that goes on and on and on and on and on and on"
	slug := Slugify(long)
	assert.LessOrEqual(t, len(slug), slugMaxLen)
}
