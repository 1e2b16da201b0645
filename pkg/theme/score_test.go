package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierWeight(t *testing.T) {
	assert.Equal(t, 1.0, tierWeight(float64(1)))
	assert.Equal(t, 0.6, tierWeight(float64(2)))
	assert.Equal(t, 0.3, tierWeight(float64(3)))
	assert.Equal(t, 0.3, tierWeight(nil))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(2))
	assert.Equal(t, 0.5, clamp01(0.5))
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.357, round3(0.3567))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "adv_packaging_cowos", slugify("ADV_PACKAGING:cowos"))
}
