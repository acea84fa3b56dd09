package tui

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"pulseboard/internal/dashboard"
	"pulseboard/internal/prefs"
	"pulseboard/internal/widget"
)

func newTestApp(t *testing.T, doc prefs.Document) (appModel, prefs.FileStore) {
	t.Helper()

	store := prefs.FileStore{Dir: t.TempDir()}
	m := newAppModel(Options{
		Store:    store,
		Debounce: 20 * time.Millisecond,
		Logger:   log.New(io.Discard),
	})
	m = apply(t, m, tea.WindowSizeMsg{Width: 140, Height: 42})
	m = apply(t, m, hydratedMsg{doc: doc})
	if m.mode != modeCanvas {
		t.Fatalf("mode = %v after hydration", m.mode)
	}
	t.Cleanup(m.coord.Close)
	return m, store
}

func apply(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(appModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func waitForStore(t *testing.T, store prefs.FileStore, cond func(prefs.Document) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := store.Read(context.Background())
		if err == nil && cond(doc) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("store never reached expected state")
}

func TestHydration_SeedsDefaultBoard(t *testing.T) {
	t.Parallel()

	m, _ := newTestApp(t, prefs.Document{})
	if got := m.cfg.Active(); len(got) != 3 {
		t.Fatalf("active = %v", got)
	}
	view := m.View()
	for _, name := range []string{"Open Tasks", "Quote of the Day", "World Clock"} {
		if !strings.Contains(view, name) {
			t.Fatalf("view missing %q", name)
		}
	}
}

func TestMouseDrag_MovesWidgetAndDebouncesSave(t *testing.T) {
	t.Parallel()

	m, store := newTestApp(t, prefs.Document{})

	// Press on the title row of Open Tasks (canvas row 0 = screen row 1).
	m = apply(t, m, tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if id, ok := m.tracker.DraggingID(); !ok || id != widget.OpenTasks {
		t.Fatalf("DraggingID = %v %v", id, ok)
	}

	// 5 columns right, 5 rows down = 50 x 100 layout units.
	m = apply(t, m, tea.MouseMsg{X: 10, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	r, _ := m.cfg.Layout(widget.OpenTasks)
	if r.X != 50 || r.Y != 100 {
		t.Fatalf("mid-drag layout = %+v", r)
	}

	m = apply(t, m, tea.MouseMsg{X: 10, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.tracker.Active() {
		t.Fatal("session survived release")
	}

	// The debounced save lands the final geometry in the store.
	waitForStore(t, store, func(doc prefs.Document) bool {
		return doc.Layouts["openTasks"] == prefs.Rect{X: 50, Y: 100, Width: 500, Height: 300}
	})
}

func TestMouseResize_ViaCornerGlyph(t *testing.T) {
	t.Parallel()

	m, _ := newTestApp(t, prefs.Document{})

	// Open Tasks renders 50x15 cells; its corner cell is (49, 14) on the
	// canvas, screen row 15.
	m = apply(t, m, tea.MouseMsg{X: 49, Y: 15, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if id, ok := m.tracker.ResizingID(); !ok || id != widget.OpenTasks {
		t.Fatalf("ResizingID = %v %v", id, ok)
	}

	m = apply(t, m, tea.MouseMsg{X: 51, Y: 16, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	r, _ := m.cfg.Layout(widget.OpenTasks)
	if r.Width != 520 || r.Height != 320 {
		t.Fatalf("layout = %+v", r)
	}
	if r.X != 0 || r.Y != 0 {
		t.Fatalf("resize moved the widget: %+v", r)
	}

	m = apply(t, m, tea.MouseMsg{X: 51, Y: 16, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.tracker.Active() {
		t.Fatal("session survived release")
	}
}

func TestHideWidget_RemovesItFromCanvasAndHitTesting(t *testing.T) {
	t.Parallel()

	m, store := newTestApp(t, prefs.Document{})

	// Focus starts on the first widget; h hides it.
	m = apply(t, m, key("h"))
	if m.cfg.Visible(widget.OpenTasks) {
		t.Fatal("still visible after h")
	}
	if strings.Contains(m.View(), "Open Tasks") {
		t.Fatal("hidden widget still rendered")
	}

	// Its cells are no longer interactive.
	m = apply(t, m, tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.tracker.Active() {
		t.Fatal("hidden widget accepted a drag")
	}

	// Hide persists immediately, and membership survives.
	waitForStore(t, store, func(doc prefs.Document) bool {
		v, ok := doc.Visibility["openTasks"]
		return ok && !v && len(doc.ActiveWidgets) == 3
	})

	// h again restores it in place.
	m = apply(t, m, key("h"))
	if !strings.Contains(m.View(), "Open Tasks") {
		t.Fatal("re-shown widget not rendered")
	}
	r, _ := m.cfg.Layout(widget.OpenTasks)
	if r.X != 0 || r.Y != 0 {
		t.Fatalf("re-show moved the widget: %+v", r)
	}
}

func TestRemove_RequiresConfirmation(t *testing.T) {
	t.Parallel()

	m, store := newTestApp(t, prefs.Document{})

	m = apply(t, m, key("x"))
	if m.mode != modeConfirmRemove || m.confirmTarget != widget.OpenTasks {
		t.Fatalf("mode=%v target=%v", m.mode, m.confirmTarget)
	}
	if !strings.Contains(m.View(), "Remove widget") {
		t.Fatal("confirm modal not rendered")
	}

	// Escape keeps the widget.
	m = apply(t, m, key("esc"))
	if m.mode != modeCanvas || !m.cfg.Contains(widget.OpenTasks) {
		t.Fatal("esc did not cancel removal")
	}

	// Enter defaults to the safe button.
	m = apply(t, m, key("x"))
	m = apply(t, m, key("enter"))
	if !m.cfg.Contains(widget.OpenTasks) {
		t.Fatal("default confirm button removed the widget")
	}

	// y confirms.
	m = apply(t, m, key("x"))
	m = apply(t, m, key("y"))
	if m.cfg.Contains(widget.OpenTasks) {
		t.Fatal("widget still on board after confirmed removal")
	}
	if _, ok := m.bodies[widget.OpenTasks]; ok {
		t.Fatal("body survived removal")
	}

	waitForStore(t, store, func(doc prefs.Document) bool {
		if len(doc.ActiveWidgets) != 2 {
			return false
		}
		_, hasLayout := doc.Layouts["openTasks"]
		_, hasVis := doc.Visibility["openTasks"]
		return !hasLayout && !hasVis
	})
}

func TestAddWidget_PlacedBelowAndFocused(t *testing.T) {
	t.Parallel()

	m, store := newTestApp(t, prefs.Document{})

	(&m).addWidget(widget.Mood)
	if !m.cfg.Contains(widget.Mood) {
		t.Fatal("mood not added")
	}
	if m.focusedID() != widget.Mood {
		t.Fatalf("focus = %v", m.focusedID())
	}
	if _, ok := m.bodies[widget.Mood]; !ok {
		t.Fatal("no body constructed for added widget")
	}
	r, _ := m.cfg.Layout(widget.Mood)
	if r.Y != 640 {
		t.Fatalf("mood layout = %+v; want below the board", r)
	}

	waitForStore(t, store, func(doc prefs.Document) bool {
		return len(doc.ActiveWidgets) == 4
	})

	// Re-adding changes nothing.
	before, _ := m.cfg.Layout(widget.Mood)
	(&m).addWidget(widget.Mood)
	after, _ := m.cfg.Layout(widget.Mood)
	if before != after || len(m.cfg.Active()) != 4 {
		t.Fatal("re-add disturbed the board")
	}
}

func TestPicker_OpensAndCancels(t *testing.T) {
	t.Parallel()

	m, _ := newTestApp(t, prefs.Document{})

	m = apply(t, m, key("a"))
	if m.mode != modePicker {
		t.Fatalf("mode = %v", m.mode)
	}
	if !strings.Contains(m.View(), "Add widget") {
		t.Fatal("picker not rendered")
	}

	m = apply(t, m, key("esc"))
	if m.mode != modeCanvas {
		t.Fatalf("mode = %v after esc", m.mode)
	}
}

func TestKeys_ForwardedToFocusedBody(t *testing.T) {
	t.Parallel()

	m, _ := newTestApp(t, prefs.Document{})

	(&m).addWidget(widget.Calculator)
	for _, k := range []string{"1", "+", "2", "="} {
		m = apply(t, m, key(k))
	}
	out := m.bodies[widget.Calculator].Render(30, 10)
	if !strings.Contains(out, "= 3") {
		t.Fatalf("calculator output = %q", out)
	}
}

func TestQuit_FlushesPendingGeometry(t *testing.T) {
	t.Parallel()

	store := prefs.FileStore{Dir: t.TempDir()}
	m := newAppModel(Options{
		Store:    store,
		Debounce: dashboard.DefaultDebounce, // long window: only Flush can save this
		Logger:   log.New(io.Discard),
	})
	m = apply(t, m, tea.WindowSizeMsg{Width: 140, Height: 42})
	m = apply(t, m, hydratedMsg{doc: prefs.Document{}})

	m = apply(t, m, tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = apply(t, m, tea.MouseMsg{X: 15, Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = apply(t, m, tea.MouseMsg{X: 15, Y: 3, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	next, cmd := m.Update(key("q"))
	m = next.(appModel)
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}

	// teardown flushed synchronously; no waiting needed.
	doc, err := store.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Layouts["openTasks"] != (prefs.Rect{X: 100, Y: 40, Width: 500, Height: 300}) {
		t.Fatalf("stored layout = %+v", doc.Layouts["openTasks"])
	}
}

// slowStore holds every write open briefly, so later UI activity overlaps
// with save goroutines still iterating their documents.
type slowStore struct {
	prefs.FileStore
}

func (s slowStore) Write(ctx context.Context, doc prefs.Document) error {
	time.Sleep(2 * time.Millisecond)
	return s.FileStore.Write(ctx, doc)
}

func TestSaveExtra_DetachedFromLiveMapDuringSaves(t *testing.T) {
	t.Parallel()

	store := slowStore{prefs.FileStore{Dir: t.TempDir()}}
	m := newAppModel(Options{Store: store, Debounce: time.Minute, Logger: log.New(io.Discard)})
	m = apply(t, m, tea.WindowSizeMsg{Width: 140, Height: 42})
	m = apply(t, m, hydratedMsg{doc: prefs.Document{Extra: map[string]json.RawMessage{
		"theme": json.RawMessage(`"dark"`),
	}}})
	t.Cleanup(m.coord.Close)

	// Each call mutates the live extra map while earlier saves are still
	// iterating their published documents in store goroutines; run with
	// -race to catch any shared map sneaking back in.
	env := m.bodyEnv()
	for i := 0; i < 200; i++ {
		env.SaveExtra("mood_widget_current", strconv.Itoa(i))
	}

	waitForStore(t, store.FileStore, func(doc prefs.Document) bool {
		return string(doc.Extra["mood_widget_current"]) == `"199"`
	})
	doc, err := store.FileStore.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(doc.Extra["theme"]) != `"dark"` {
		t.Fatalf("theme = %s; want foreign key preserved", doc.Extra["theme"])
	}
}

func TestDrag_DebounceStartsOnReleaseNotMotion(t *testing.T) {
	t.Parallel()

	store := prefs.FileStore{Dir: t.TempDir()}
	m := newAppModel(Options{Store: store, Debounce: time.Minute, Logger: log.New(io.Discard)})
	m = apply(t, m, tea.WindowSizeMsg{Width: 140, Height: 42})
	m = apply(t, m, hydratedMsg{doc: prefs.Document{}})
	t.Cleanup(m.coord.Close)

	m = apply(t, m, tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = apply(t, m, tea.MouseMsg{X: 10, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})

	// A drag held still must not save mid-session.
	if m.coord.Pending() {
		t.Fatal("motion started the debounce window")
	}
	// The mid-session geometry is still published for immediate saves.
	if r := m.cell.Load().Layouts["openTasks"]; r.X != 50 || r.Y != 100 {
		t.Fatalf("published mid-drag layout = %+v", r)
	}

	m = apply(t, m, tea.MouseMsg{X: 10, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if !m.coord.Pending() {
		t.Fatal("release did not start the debounce window")
	}
}

func TestExternalReload_SkippedDuringDrag(t *testing.T) {
	t.Parallel()

	m, _ := newTestApp(t, prefs.Document{})

	m = apply(t, m, tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = apply(t, m, reloadedMsg{doc: prefs.Document{ActiveWidgets: []string{"mood"}}})

	// Mid-drag, an external document must not replace the board.
	if got := m.cfg.Active(); len(got) != 3 {
		t.Fatalf("active = %v after mid-drag reload", got)
	}

	m = apply(t, m, tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func TestExternalReload_AppliedWhenIdle(t *testing.T) {
	t.Parallel()

	m, _ := newTestApp(t, prefs.Document{})

	ext := prefs.Document{
		ActiveWidgets: []string{"mood"},
		Layouts:       map[string]prefs.Rect{"mood": {X: 0, Y: 0, Width: 350, Height: 250}},
		Visibility:    map[string]bool{"mood": true},
	}
	m = apply(t, m, reloadedMsg{doc: ext})
	got := m.cfg.Active()
	if len(got) != 1 || got[0] != widget.Mood {
		t.Fatalf("active = %v after idle reload", got)
	}
	if _, ok := m.bodies[widget.Mood]; !ok {
		t.Fatal("bodies not rebuilt on reload")
	}
}
