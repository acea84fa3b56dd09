package dashboard

import (
	"testing"

	"pulseboard/internal/prefs"
	"pulseboard/internal/widget"
)

func seededTracker(t *testing.T) (*Config, *Tracker, *int, *int) {
	t.Helper()
	c := NewConfig()
	c.Hydrate(prefs.Document{})
	attach, detach := 0, 0
	tr := NewTracker(c, Hooks{
		Attach: func() { attach++ },
		Detach: func() { detach++ },
	})
	return c, tr, &attach, &detach
}

func TestDrag_MovesByPointerDelta(t *testing.T) {
	t.Parallel()

	c, tr, _, _ := seededTracker(t)

	// openTasks starts at (0,0).
	if !tr.StartDrag(widget.OpenTasks, 600, 400) {
		t.Fatal("StartDrag failed")
	}
	if id, ok := tr.DraggingID(); !ok || id != widget.OpenTasks {
		t.Fatalf("DraggingID = %v %v", id, ok)
	}

	tr.PointerMove(650, 430)
	r, _ := c.Layout(widget.OpenTasks)
	if r.X != 50 || r.Y != 30 {
		t.Fatalf("after move: %+v", r)
	}

	// Moves re-derive from the press origin, so a second move is not
	// cumulative drift.
	tr.PointerMove(610, 405)
	r, _ = c.Layout(widget.OpenTasks)
	if r.X != 10 || r.Y != 5 {
		t.Fatalf("after second move: %+v", r)
	}

	if !tr.PointerUp() {
		t.Fatal("PointerUp reported no session")
	}
	// Geometry stays where it was released.
	r, _ = c.Layout(widget.OpenTasks)
	if r.X != 10 || r.Y != 5 {
		t.Fatalf("after release: %+v", r)
	}
}

func TestDrag_ClampsAtCanvasOrigin(t *testing.T) {
	t.Parallel()

	c, tr, _, _ := seededTracker(t)

	tr.StartDrag(widget.OpenTasks, 600, 400)
	tr.PointerMove(100, 50) // would be (-500, -350)
	r, _ := c.Layout(widget.OpenTasks)
	if r.X != 0 || r.Y != 0 {
		t.Fatalf("layout = %+v; want clamped to origin", r)
	}

	// Size untouched by a drag.
	if r.Width != 500 || r.Height != 300 {
		t.Fatalf("drag changed size: %+v", r)
	}
}

func TestResize_GrowsAndClampsAtMinimum(t *testing.T) {
	t.Parallel()

	c, tr, _, _ := seededTracker(t)

	// quote starts 400x250 at (520,0).
	if !tr.StartResize(widget.Quote, 920, 250) {
		t.Fatal("StartResize failed")
	}
	tr.PointerMove(1020, 300)
	r, _ := c.Layout(widget.Quote)
	if r.Width != 500 || r.Height != 300 {
		t.Fatalf("after grow: %+v", r)
	}
	if r.X != 520 || r.Y != 0 {
		t.Fatalf("resize moved the widget: %+v", r)
	}

	tr.PointerMove(100, 50) // far past the minimums
	r, _ = c.Layout(widget.Quote)
	if r.Width != MinWidth || r.Height != MinHeight {
		t.Fatalf("after shrink: %+v; want minimums", r)
	}

	tr.PointerUp()
}

func TestSessions_AreMutuallyExclusive(t *testing.T) {
	t.Parallel()

	_, tr, attach, detach := seededTracker(t)

	tr.StartDrag(widget.OpenTasks, 0, 0)
	tr.StartResize(widget.Quote, 0, 0)

	if _, ok := tr.DraggingID(); ok {
		t.Fatal("drag survived a new resize press")
	}
	if id, ok := tr.ResizingID(); !ok || id != widget.Quote {
		t.Fatalf("ResizingID = %v %v", id, ok)
	}
	// First session detached, both attached.
	if *attach != 2 || *detach != 1 {
		t.Fatalf("attach=%d detach=%d", *attach, *detach)
	}
}

func TestHooks_FireExactlyOncePerSession(t *testing.T) {
	t.Parallel()

	_, tr, attach, detach := seededTracker(t)

	tr.StartDrag(widget.Clock, 10, 10)
	if *attach != 1 {
		t.Fatalf("attach=%d after start", *attach)
	}
	tr.PointerMove(20, 20)
	tr.PointerMove(30, 30)
	if *attach != 1 || *detach != 0 {
		t.Fatalf("moves touched hooks: attach=%d detach=%d", *attach, *detach)
	}

	tr.PointerUp()
	if *detach != 1 {
		t.Fatalf("detach=%d after release", *detach)
	}

	// Idle pointer events never touch hooks or report sessions.
	if tr.PointerUp() {
		t.Fatal("PointerUp while idle reported a session")
	}
	tr.PointerMove(99, 99)
	if *attach != 1 || *detach != 1 {
		t.Fatalf("idle events touched hooks: attach=%d detach=%d", *attach, *detach)
	}
}

func TestCancel_DetachesWithoutSave(t *testing.T) {
	t.Parallel()

	_, tr, _, detach := seededTracker(t)

	tr.StartResize(widget.Clock, 0, 0)
	tr.Cancel()
	if tr.Active() {
		t.Fatal("still active after cancel")
	}
	if *detach != 1 {
		t.Fatalf("detach=%d", *detach)
	}

	tr.Cancel() // idempotent
	if *detach != 1 {
		t.Fatalf("second cancel detached again: %d", *detach)
	}
}

func TestStart_OnAbsentWidgetIsRejected(t *testing.T) {
	t.Parallel()

	_, tr, attach, _ := seededTracker(t)

	if tr.StartDrag("nope", 0, 0) {
		t.Fatal("drag started for absent id")
	}
	if tr.StartResize("nope", 0, 0) {
		t.Fatal("resize started for absent id")
	}
	if tr.Active() || *attach != 0 {
		t.Fatalf("rejected start left state: active=%v attach=%d", tr.Active(), *attach)
	}
}
