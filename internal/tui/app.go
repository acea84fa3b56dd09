package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"pulseboard/internal/dashboard"
	"pulseboard/internal/prefs"
	"pulseboard/internal/tui/body"
	"pulseboard/internal/widget"
)

type mode int

const (
	modeLoading mode = iota
	modeCanvas
	modePicker
	modeConfirmRemove
)

type hydratedMsg struct {
	doc prefs.Document
	err error
}

type reloadedMsg struct {
	doc prefs.Document
	err error
}

type tickMsg time.Time

type storeChangedMsg struct{}

type appModel struct {
	store  prefs.Store
	logger *log.Logger

	cfg     *dashboard.Config
	tracker *dashboard.Tracker
	coord   *dashboard.Coordinator
	cell    *dashboard.SnapshotCell

	// extra holds preference keys the canvas does not own; the map identity
	// is stable after hydration so body SaveExtra closures stay valid across
	// model copies.
	extra  map[string]json.RawMessage
	bodies map[widget.ID]body.Body

	width, height int
	mode          mode
	statusErr     string

	focusIdx             int
	scrollCol, scrollRow int

	picker        list.Model
	confirmTarget widget.ID
	confirmFocus  confirmModalFocus

	// watcher delivers external edits to the preference file; nil for
	// stores without a local file.
	watcher   *fsnotify.Watcher
	watchPath string
}

type Options struct {
	Store prefs.Store
	// WatchPath, when non-empty, is a local file whose external modification
	// reloads the board (only while no drag and no pending save).
	WatchPath string
	Debounce  time.Duration
	Logger    *log.Logger
	// Theme forces light/dark rendering; empty means detect.
	Theme string
}

func newAppModel(opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cfg := dashboard.NewConfig()
	cell := &dashboard.SnapshotCell{}
	tracker := dashboard.NewTracker(cfg, dashboard.Hooks{
		Attach: func() { logger.Debug("pointer session started") },
		Detach: func() { logger.Debug("pointer session ended") },
	})
	coord := dashboard.NewCoordinator(dashboard.CoordinatorOpts{
		Snapshot: cell.Load,
		Store:    opts.Store,
		Debounce: opts.Debounce,
		Logger:   logger,
	})

	return appModel{
		store:     opts.Store,
		logger:    logger,
		cfg:       cfg,
		tracker:   tracker,
		coord:     coord,
		cell:      cell,
		picker:    newPickerList(cfg.Contains, 0, 0),
		bodies:    map[widget.ID]body.Body{},
		mode:      modeLoading,
		watchPath: opts.WatchPath,
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd())
}

func (m appModel) loadCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		doc, err := store.Read(ctx)
		return hydratedMsg{doc: doc, err: err}
	}
}

func (m appModel) reloadCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		doc, err := store.Read(ctx)
		return reloadedMsg{doc: doc, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// hydrate seeds the configuration from a stored document and (re)builds the
// widget bodies.
func (m *appModel) hydrate(doc prefs.Document) {
	m.cfg.Hydrate(doc)
	if doc.Extra != nil {
		m.extra = doc.Extra
	} else {
		m.extra = map[string]json.RawMessage{}
	}
	m.publish()

	env := m.bodyEnv()
	m.bodies = map[widget.ID]body.Body{}
	for _, id := range m.cfg.Active() {
		if b, ok := body.New(id, env); ok {
			m.bodies[id] = b
		}
	}
	m.clampFocus()
}

// bodyEnv builds the environment handed to widget bodies. The closures
// capture the stable pointers (and the extra map), not the model value, so
// they survive Bubble Tea's model copying.
func (m *appModel) bodyEnv() body.Env {
	cfg, cell, coord, logger := m.cfg, m.cell, m.coord, m.logger
	extra := m.extra
	return body.Env{
		Doc:    prefs.Document{Extra: extra},
		Logger: logger,
		SaveExtra: func(key string, v any) {
			b, err := json.Marshal(v)
			if err != nil {
				logger.Warn("widget preference not saved", "key", key, "err", err)
				return
			}
			extra[key] = b
			d := cfg.Snapshot()
			d.Extra = cloneExtra(extra)
			cell.Publish(d)
			coord.SaveNow()
		},
	}
}

// publish pushes the current full document (owned keys plus passthrough
// extras) to the snapshot cell the save coordinator reads from.
func (m *appModel) publish() {
	doc := m.cfg.Snapshot()
	doc.Extra = cloneExtra(m.extra)
	m.cell.Publish(doc)
}

// cloneExtra detaches the passthrough keys from the live map. Published
// documents reach save goroutines that iterate Extra while the UI loop keeps
// writing to m.extra; sharing the map would be a fatal concurrent map access.
func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (m appModel) focusedID() widget.ID {
	active := m.cfg.Active()
	if len(active) == 0 {
		return ""
	}
	i := m.focusIdx
	if i < 0 || i >= len(active) {
		i = 0
	}
	return active[i]
}

func (m *appModel) clampFocus() {
	n := len(m.cfg.Active())
	if n == 0 {
		m.focusIdx = 0
		return
	}
	if m.focusIdx < 0 {
		m.focusIdx = 0
	}
	if m.focusIdx >= n {
		m.focusIdx = n - 1
	}
}

func (m *appModel) cycleFocus(delta int) {
	n := len(m.cfg.Active())
	if n == 0 {
		return
	}
	m.focusIdx = ((m.focusIdx+delta)%n + n) % n
}

// teardown mirrors the canvas unmount rules: cancel any live pointer
// session (the detach hook runs), stop the debounce timer, then do one
// final synchronous save so an unexpired debounce window is not lost.
func (m *appModel) teardown() {
	m.tracker.Cancel()
	m.publish()
	m.coord.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.coord.Flush(ctx); err != nil {
		m.logger.Warn("final save failed", "err", err)
	}
}
