package dashboard

import (
	"pulseboard/internal/prefs"
	"pulseboard/internal/widget"
)

// defaultWidgets is the hard-coded seed set used when the store has no
// dashboard state (or the load failed outright).
var defaultWidgets = []widget.ID{widget.OpenTasks, widget.Quote, widget.Clock}

// Config is the live, mutable per-user dashboard state.
//
// Invariant: the layouts and visibility maps are defined for exactly the ids
// in active — no orphans, no gaps. Every mutation that changes membership
// updates all three in the same call. All mutation happens on the UI event
// loop, so there is no locking; the persistence coordinator re-reads state
// through Snapshot at save time instead.
type Config struct {
	active     []widget.ID
	layouts    map[widget.ID]Rect
	visibility map[widget.ID]bool
}

// NewConfig returns an empty configuration. Call Hydrate (or Add) next.
func NewConfig() *Config {
	return &Config{
		layouts:    map[widget.ID]Rect{},
		visibility: map[widget.ID]bool{},
	}
}

// Active returns the active widget ids in insertion order. The slice is a
// copy; mutating it does not affect the configuration.
func (c *Config) Active() []widget.ID {
	out := make([]widget.ID, len(c.active))
	copy(out, c.active)
	return out
}

// Contains reports whether id is on the board.
func (c *Config) Contains(id widget.ID) bool {
	_, ok := c.layouts[id]
	return ok
}

// Layout returns the rectangle for id, if active.
func (c *Config) Layout(id widget.ID) (Rect, bool) {
	r, ok := c.layouts[id]
	return r, ok
}

// Visible reports whether id is active and shown.
func (c *Config) Visible(id widget.ID) bool {
	return c.visibility[id]
}

// Add puts id on the board. Adding an id that is already active is a no-op
// (membership is idempotent); reports whether the configuration changed.
// Unknown ids are rejected: only catalog widgets can be added, even though
// hydration tolerates stale ids.
func (c *Config) Add(id widget.ID) bool {
	if c.Contains(id) {
		return false
	}
	def, ok := widget.Lookup(id)
	if !ok {
		return false
	}
	var r Rect
	if len(c.active) == 0 {
		r = seedRect(def, 0)
	} else {
		r = nextRect(def, c.layouts)
	}
	c.active = append(c.active, id)
	c.layouts[id] = r
	c.visibility[id] = true
	return true
}

// Remove takes id off the board, deleting its layout and visibility entries
// in the same update. Reports whether id was present.
func (c *Config) Remove(id widget.ID) bool {
	if !c.Contains(id) {
		return false
	}
	for i, cur := range c.active {
		if cur == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			break
		}
	}
	delete(c.layouts, id)
	delete(c.visibility, id)
	return true
}

// ToggleVisibility flips the shown/hidden flag for id, leaving geometry and
// membership alone so a re-shown widget reappears where it was. Reports
// whether id was present.
func (c *Config) ToggleVisibility(id widget.ID) bool {
	if !c.Contains(id) {
		return false
	}
	c.visibility[id] = !c.visibility[id]
	return true
}

// SetRect replaces the rectangle for id, clamped to the canvas origin and
// minimum size. Used by the drag/resize sessions.
func (c *Config) SetRect(id widget.ID, r Rect) bool {
	if !c.Contains(id) {
		return false
	}
	c.layouts[id] = r.clamped()
	return true
}

// Hydrate replaces the configuration with stored state. It resets in place
// so holders of the pointer (sessions, body environments) stay valid across
// an external-edit reload.
//
// The document is treated as best-effort: any of the three keys may be
// absent. No stored active list at all means first load, so the default set
// is seeded with the two-column flow. Ids the catalog no longer knows are
// kept (they render as nothing but may become valid again after an update);
// a missing layout entry is filled with the add-placement rule; a missing
// visibility entry defaults to shown.
func (c *Config) Hydrate(doc prefs.Document) {
	c.active = nil
	c.layouts = map[widget.ID]Rect{}
	c.visibility = map[widget.ID]bool{}

	// An empty active list counts as "no stored dashboard": the original
	// backend defaulted the key to an empty list for fresh users, so absent
	// and empty are indistinguishable through some stores.
	if len(doc.ActiveWidgets) == 0 {
		c.seedDefaults()
		return
	}

	for _, rawID := range doc.ActiveWidgets {
		id := widget.ID(rawID)
		if c.Contains(id) {
			continue // duplicates in a stored list are collapsed
		}
		r, ok := rectFromDoc(doc, id)
		if !ok {
			if def, known := widget.Lookup(id); known {
				r = nextRect(def, c.layouts)
			} else {
				// Unknown id with no stored geometry: park it at the
				// minimum size; it renders as nothing anyway.
				r = Rect{}.clamped()
			}
		}
		vis := true
		if doc.Visibility != nil {
			if v, ok := doc.Visibility[string(id)]; ok {
				vis = v
			}
		}
		c.active = append(c.active, id)
		c.layouts[id] = r
		c.visibility[id] = vis
	}
}

func rectFromDoc(doc prefs.Document, id widget.ID) (Rect, bool) {
	if doc.Layouts == nil {
		return Rect{}, false
	}
	wr, ok := doc.Layouts[string(id)]
	if !ok {
		return Rect{}, false
	}
	return Rect{X: wr.X, Y: wr.Y, Width: wr.Width, Height: wr.Height}.clamped(), true
}

func (c *Config) seedDefaults() {
	for i, id := range defaultWidgets {
		def, ok := widget.Lookup(id)
		if !ok {
			continue
		}
		c.active = append(c.active, id)
		c.layouts[id] = seedRect(def, i)
		c.visibility[id] = true
	}
}

// Snapshot renders the current state as a preference document. The maps and
// slice are fresh copies, safe to hand to a save goroutine while the UI
// keeps mutating the configuration.
func (c *Config) Snapshot() prefs.Document {
	ids := make([]string, len(c.active))
	layouts := make(map[string]prefs.Rect, len(c.layouts))
	vis := make(map[string]bool, len(c.visibility))
	for i, id := range c.active {
		ids[i] = string(id)
		r := c.layouts[id]
		layouts[string(id)] = prefs.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
		vis[string(id)] = c.visibility[id]
	}
	return prefs.Document{
		ActiveWidgets: ids,
		Layouts:       layouts,
		Visibility:    vis,
	}
}
