package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/alert"
)

func TestDedupKeyFormat(t *testing.T) {
	day := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "NEW_CANDIDATE:T:ai_constraints:adv_packaging_cowos:2026-03-05",
		dedupKey(alert.AlertTypeNEW_CANDIDATE, "T:ai_constraints:adv_packaging_cowos", day))
	assert.Equal(t, "DAILY_DIGEST:none:2026-03-05", dedupKey(alert.AlertTypeDAILY_DIGEST, "", day))
}

func TestFormatNewCandidateFallsBackToNameWithoutThesis(t *testing.T) {
	th := &ent.Theme{
		Name:            "ADV_PACKAGING:cowos",
		ConstraintLayer: "ADV_PACKAGING",
		TighteningScore: 0.42,
		EventCount:      5,
		TighteningCount: 4,
	}
	msg := formatNewCandidate(th)
	assert.Contains(t, msg, "ADV_PACKAGING:cowos")
	assert.Contains(t, msg, "0.42")
}

func TestFormatActionableBriefingIncludesThesisSections(t *testing.T) {
	th := &ent.Theme{
		Name:            "HBM_MEMORY:hbm3e",
		TighteningScore: 0.81,
		EventCount:      10,
		Thesis: map[string]interface{}{
			"one_liner":             "HBM capacity is the binding constraint.",
			"why_now":               []interface{}{"Demand surge", "Yield issues"},
			"invalidation_triggers": []interface{}{"New fab online"},
			"relief_timeline":       "Q3 2026",
		},
	}
	msg := formatActionableBriefing(th)
	assert.Contains(t, msg, "HBM capacity is the binding constraint.")
	assert.Contains(t, msg, "Demand surge")
	assert.Contains(t, msg, "New fab online")
}
