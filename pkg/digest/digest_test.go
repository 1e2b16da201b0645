package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/constraintwatch/constraintwatch/ent"
	entalert "github.com/constraintwatch/constraintwatch/ent/alert"
	"github.com/constraintwatch/constraintwatch/ent/theme"
)

func TestRenderEmptyWindowReportsNoActivity(t *testing.T) {
	text := render(nil, nil, time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, text, "No theme movement or alerts")
}

func TestRenderListsThemesAndAlerts(t *testing.T) {
	themeID := "T:silicon:tsmc-capacity"
	themes := []*ent.Theme{
		{Name: "TSMC advanced packaging squeeze", Status: theme.StatusACTIVE, TighteningScore: 0.82},
	}
	alerts := []*ent.Alert{
		{AlertType: entalert.AlertTypeINFLECTION, ThemeID: &themeID},
	}

	text := render(themes, alerts, time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, text, "Daily digest — 2026-07-30")
	assert.Contains(t, text, "TSMC advanced packaging squeeze")
	assert.Contains(t, text, "Alerts sent (1)")
	assert.Contains(t, text, themeID)
}

func TestRenderOmitsThemeSectionWhenNoThemesUpdated(t *testing.T) {
	alerts := []*ent.Alert{
		{AlertType: entalert.AlertTypeACTIONABLE_BRIEFING, ThemeID: nil},
	}

	text := render(nil, alerts, time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC))

	assert.NotContains(t, text, "Themes updated")
	assert.Contains(t, text, "Alerts sent (1)")
	assert.Contains(t, text, "—")
}
