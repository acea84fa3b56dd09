package dashboard

import "pulseboard/internal/widget"

// A pointer session is the state between a pointer-down on a widget handle
// and the matching pointer-up. At most one session of either kind is live at
// a time; the Tracker enforces that and runs the attach/detach hooks exactly
// once per session so global pointer listeners cannot accumulate.

// DragSession captures the pointer origin and the widget's position at
// pointer-down on the drag handle. While live, every pointer move re-derives
// the position from the origins; there is no incremental drift and no
// rollback on release.
type DragSession struct {
	id widget.ID

	pointerX, pointerY int
	originX, originY   int
}

// ResizeSession mirrors DragSession for the size axis: it captures the
// widget's width/height at pointer-down on the resize handle.
type ResizeSession struct {
	id widget.ID

	pointerX, pointerY int
	originW, originH   int
}

// Hooks are the entry/exit actions of a session: attach global pointer
// listeners on start, detach on end. Either func may be nil.
type Hooks struct {
	Attach func()
	Detach func()
}

// Tracker owns the at-most-one live session and applies its geometry
// updates to the configuration.
type Tracker struct {
	cfg   *Config
	hooks Hooks

	drag   *DragSession
	resize *ResizeSession
}

func NewTracker(cfg *Config, hooks Hooks) *Tracker {
	return &Tracker{cfg: cfg, hooks: hooks}
}

// Active reports whether any session is live.
func (t *Tracker) Active() bool { return t.drag != nil || t.resize != nil }

// DraggingID returns the id being dragged, if any.
func (t *Tracker) DraggingID() (widget.ID, bool) {
	if t.drag == nil {
		return "", false
	}
	return t.drag.id, true
}

// ResizingID returns the id being resized, if any.
func (t *Tracker) ResizingID() (widget.ID, bool) {
	if t.resize == nil {
		return "", false
	}
	return t.resize.id, true
}

// StartDrag begins a drag session for id with the pointer at (px, py) in
// layout units. A pointer-down while any session is live ends that session
// first (the new press is the only tracked pointer). Returns false when id
// is not on the board.
func (t *Tracker) StartDrag(id widget.ID, px, py int) bool {
	r, ok := t.cfg.Layout(id)
	if !ok {
		return false
	}
	t.endCurrent()
	t.drag = &DragSession{
		id:       id,
		pointerX: px,
		pointerY: py,
		originX:  r.X,
		originY:  r.Y,
	}
	if t.hooks.Attach != nil {
		t.hooks.Attach()
	}
	return true
}

// StartResize begins a resize session for id with the pointer at (px, py).
func (t *Tracker) StartResize(id widget.ID, px, py int) bool {
	r, ok := t.cfg.Layout(id)
	if !ok {
		return false
	}
	t.endCurrent()
	t.resize = &ResizeSession{
		id:       id,
		pointerX: px,
		pointerY: py,
		originW:  r.Width,
		originH:  r.Height,
	}
	if t.hooks.Attach != nil {
		t.hooks.Attach()
	}
	return true
}

// PointerMove feeds the current pointer position to the live session.
// Position is clamped at the canvas origin; size is clamped at the minimums;
// there is no upper bound in either direction. No-op when idle.
func (t *Tracker) PointerMove(px, py int) {
	switch {
	case t.drag != nil:
		s := t.drag
		dx := px - s.pointerX
		dy := py - s.pointerY
		if r, ok := t.cfg.Layout(s.id); ok {
			r.X = s.originX + dx
			r.Y = s.originY + dy
			t.cfg.SetRect(s.id, r)
		}
	case t.resize != nil:
		s := t.resize
		dx := px - s.pointerX
		dy := py - s.pointerY
		if r, ok := t.cfg.Layout(s.id); ok {
			r.Width = s.originW + dx
			r.Height = s.originH + dy
			t.cfg.SetRect(s.id, r)
		}
	}
}

// PointerUp ends the live session, keeping whatever geometry was last
// computed. Reports whether a session was live (callers use that to kick the
// debounced save exactly once per session).
func (t *Tracker) PointerUp() bool {
	return t.endCurrent()
}

// Cancel ends any live session without a pointer-up, for canvas teardown.
// The detach hook still runs so no listener outlives the view.
func (t *Tracker) Cancel() {
	t.endCurrent()
}

func (t *Tracker) endCurrent() bool {
	if t.drag == nil && t.resize == nil {
		return false
	}
	t.drag = nil
	t.resize = nil
	if t.hooks.Detach != nil {
		t.hooks.Detach()
	}
	return true
}
