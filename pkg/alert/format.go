// Package alert triages themes and events into Telegram notifications
// and records an immutable, deduplicated ledger of what was sent (C13).
package alert

import (
	"fmt"
	"strings"

	"github.com/constraintwatch/constraintwatch/ent"
)

// thesisView is the subset of a stored thesis blob the formatters read.
type thesisView struct {
	OneLiner              string
	WhyNow                []string
	WhoBenefitsRingA      []string
	WhoBenefitsRingB      []string
	InvalidationTriggers  []string
	LeadingIndicators     []string
	ReliefTimeline        string
}

func readThesis(raw map[string]interface{}) thesisView {
	v := thesisView{}
	if raw == nil {
		return v
	}
	v.OneLiner, _ = raw["one_liner"].(string)
	v.ReliefTimeline, _ = raw["relief_timeline"].(string)
	v.WhyNow = stringSlice(raw["why_now"])
	v.InvalidationTriggers = stringSlice(raw["invalidation_triggers"])
	v.LeadingIndicators = stringSlice(raw["leading_indicators"])
	if benefits, ok := raw["who_benefits"].(map[string]interface{}); ok {
		v.WhoBenefitsRingA = stringSlice(benefits["ringA"])
		v.WhoBenefitsRingB = stringSlice(benefits["ringB"])
	}
	return v
}

func stringSlice(raw interface{}) []string {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clip(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// formatNewCandidate renders the NEW_CANDIDATE Telegram-HTML message.
func formatNewCandidate(th *ent.Theme) string {
	thesis := readThesis(th.Thesis)
	oneLiner := thesis.OneLiner
	if oneLiner == "" {
		oneLiner = th.Name
	}

	lines := []string{
		fmt.Sprintf("\U0001F7E1 <b>New constraint candidate: %s</b>", th.Name),
		"",
		fmt.Sprintf("<b>What:</b> %s", oneLiner),
		fmt.Sprintf("<b>Layer:</b> %s | <b>Score:</b> %.2f", th.ConstraintLayer, th.TighteningScore),
		fmt.Sprintf("<b>Events:</b> %d (%d tightening)", th.EventCount, th.TighteningCount),
	}

	winners := append(clip(thesis.WhoBenefitsRingA, 3), clip(thesis.WhoBenefitsRingB, 2)...)
	if len(winners) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Potential winners:</b> %s", strings.Join(winners, ", ")))
	}
	if len(thesis.InvalidationTriggers) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Disconfirm:</b> %s", thesis.InvalidationTriggers[0]))
	}

	return strings.Join(lines, "\n")
}

// formatInflection renders the INFLECTION Telegram-HTML message.
func formatInflection(th *ent.Theme, ev *ent.Event) string {
	lines := []string{
		fmt.Sprintf("\U0001F7E5 <b>INFLECTION: %s</b>", th.Name),
		"",
		fmt.Sprintf("<b>Change:</b> %s — %s", ev.EventType, ev.Direction),
	}

	for k, v := range ev.Magnitude {
		if v != nil {
			lines = append(lines, fmt.Sprintf("<b>%s:</b> %v", k, v))
		}
	}

	thesis := readThesis(th.Thesis)
	if thesis.ReliefTimeline != "" {
		lines = append(lines, fmt.Sprintf("<b>Relief timeline:</b> %s", thesis.ReliefTimeline))
	}
	if len(thesis.LeadingIndicators) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Next indicator:</b> %s", thesis.LeadingIndicators[0]))
	}

	return strings.Join(lines, "\n")
}

// formatActionableBriefing renders the ACTIONABLE_BRIEFING Telegram-HTML
// message.
func formatActionableBriefing(th *ent.Theme) string {
	thesis := readThesis(th.Thesis)

	lines := []string{
		fmt.Sprintf("\U0001F7E2 <b>Briefing: %s crossed threshold</b>", th.Name),
		"",
		fmt.Sprintf("<b>Thesis:</b> %s", thesis.OneLiner),
		fmt.Sprintf("<b>Score:</b> %.2f | <b>Events:</b> %d", th.TighteningScore, th.EventCount),
		"",
	}

	if len(thesis.WhyNow) > 0 {
		lines = append(lines, "<b>Why now:</b>")
		for _, bullet := range clip(thesis.WhyNow, 3) {
			lines = append(lines, "  • "+bullet)
		}
	}

	if len(thesis.WhoBenefitsRingA) > 0 {
		lines = append(lines, fmt.Sprintf("<b>ringA:</b> %s", strings.Join(clip(thesis.WhoBenefitsRingA, 5), ", ")))
	}
	if len(thesis.WhoBenefitsRingB) > 0 {
		lines = append(lines, fmt.Sprintf("<b>ringB:</b> %s", strings.Join(clip(thesis.WhoBenefitsRingB, 5), ", ")))
	}

	if len(thesis.InvalidationTriggers) > 0 {
		lines = append(lines, "", "<b>Invalidation triggers:</b>")
		for _, t := range clip(thesis.InvalidationTriggers, 3) {
			lines = append(lines, "  • "+t)
		}
	}

	if len(thesis.LeadingIndicators) > 0 {
		lines = append(lines, "", "<b>Watch next:</b>")
		for _, ind := range clip(thesis.LeadingIndicators, 3) {
			lines = append(lines, "  • "+ind)
		}
	}

	return strings.Join(lines, "\n")
}
