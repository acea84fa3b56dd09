package body

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pulseboard/internal/prefs"
)

// keyClockTimezones is the body-owned preference key, inherited from the
// original backend: {"timezone1": "...", "timezone2": "..."}.
const keyClockTimezones = "clock_widget_timezones"

type clockBody struct {
	now   time.Time
	zones []*time.Location
}

func newClock(env Env) Body {
	b := &clockBody{now: env.now()}
	for _, name := range clockZoneNames(env.Doc) {
		loc, err := time.LoadLocation(name)
		if err != nil {
			if env.Logger != nil {
				env.Logger.Debug("clock widget: unknown timezone", "tz", name)
			}
			continue
		}
		b.zones = append(b.zones, loc)
	}
	return b
}

func clockZoneNames(doc prefs.Document) []string {
	raw, ok := doc.Extra[keyClockTimezones]
	if !ok {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	var out []string
	// Stable slots, not map order.
	for _, slot := range []string{"timezone1", "timezone2"} {
		if tz := strings.TrimSpace(m[slot]); tz != "" {
			out = append(out, tz)
		}
	}
	return out
}

func (b *clockBody) Tick(now time.Time) { b.now = now }

func (b *clockBody) Render(width, height int) string {
	var lines []string
	lines = append(lines,
		b.now.Format("15:04:05"),
		b.now.Format("Monday, 2 January 2006"),
	)
	for _, loc := range b.zones {
		t := b.now.In(loc)
		lines = append(lines, fmt.Sprintf("%-18s %s", loc.String(), t.Format("15:04")))
	}
	return strings.Join(lines, "\n")
}
