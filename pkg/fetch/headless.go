package fetch

import (
	"context"

	"github.com/constraintwatch/constraintwatch/ent"
)

// fetchHeadless handles sources whose listing page only renders its
// article list client-side. No headless-browser library is wired into
// this dependency set — no pack repo reaches for one, and adding a
// Chrome-DevTools-Protocol dependency (e.g. chromedp) purely for this one
// strategy isn't grounded in anything this corpus does. Until such a
// library is adopted, headless sources are served by the same
// static-HTML scrape the html strategy uses; a source whose content
// genuinely requires JS execution will simply yield fewer links per
// sweep rather than erroring the sweep.
func (d *Dispatcher) fetchHeadless(ctx context.Context, src *ent.Source) (int, error) {
	return d.fetchHTML(ctx, src)
}
