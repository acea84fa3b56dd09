package tui

import (
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"pulseboard/internal/prefs"
	"pulseboard/internal/tui/body"
	"pulseboard/internal/widget"
)

// canvasTop is the first screen row of the canvas (row 0 is the header).
const canvasTop = 1

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case hydratedMsg:
		if msg.err != nil {
			m.logger.Warn("loading preferences failed, starting from defaults", "err", msg.err)
			m.statusErr = "could not load saved preferences"
		}
		m.hydrate(msg.doc)
		m.mode = modeCanvas
		var cmds []tea.Cmd
		if m.watchPath != "" && m.watcher == nil {
			w, err := newPrefsWatcher(m.watchPath)
			if err != nil {
				m.logger.Warn("preference file watch unavailable", "err", err)
			} else {
				m.watcher = w
				cmds = append(cmds, m.watchCmd())
			}
		}
		return m, tea.Batch(cmds...)

	case storeChangedMsg:
		// Keep the watch stream flowing regardless of whether we reload.
		return m, tea.Batch(m.reloadCmd(), m.watchCmd())

	case reloadedMsg:
		if msg.err != nil {
			m.logger.Debug("reload after external edit failed", "err", msg.err)
			return m, nil
		}
		// Never clobber local state mid-interaction or while a save of our
		// own is still pending (our write is what triggered the event).
		if m.tracker.Active() || m.coord.Pending() {
			return m, nil
		}
		if docsEqual(msg.doc, m.cell.Load()) {
			return m, nil
		}
		m.logger.Info("preferences changed externally, reloading board")
		m.hydrate(msg.doc)
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		for _, b := range m.bodies {
			if t, ok := b.(body.Ticker); ok {
				t.Tick(now)
			}
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		if m.mode == modeCanvas {
			return m.updateMouse(msg)
		}
		return m, nil
	}

	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case modeLoading:
		return m, nil

	case modeConfirmRemove:
		switch key {
		case "tab", "shift+tab", "left", "right":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
		case "enter":
			if m.confirmFocus == confirmFocusConfirm {
				m.removeWidget(m.confirmTarget)
			}
			m.mode = modeCanvas
		case "y":
			m.removeWidget(m.confirmTarget)
			m.mode = modeCanvas
		case "n", "esc", "ctrl+g":
			m.mode = modeCanvas
		}
		return m, nil

	case modePicker:
		switch key {
		case "esc", "ctrl+g":
			if m.picker.FilterState() == list.Unfiltered {
				m.mode = modeCanvas
				return m, nil
			}
		case "enter":
			if it, ok := m.picker.SelectedItem().(pickerItem); ok {
				m.addWidget(it.def.ID)
				m.mode = modeCanvas
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	default: // modeCanvas
		switch key {
		case "q":
			return m.quit()
		case "a":
			m.picker = newPickerList(m.cfg.Contains, m.width, m.height-2)
			m.mode = modePicker
			return m, nil
		case "h":
			if id := m.focusedID(); id != "" && m.cfg.ToggleVisibility(id) {
				m.publish()
				m.coord.SaveNow()
			}
			return m, nil
		case "x":
			if id := m.focusedID(); id != "" {
				m.confirmTarget = id
				m.confirmFocus = confirmFocusCancel
				m.mode = modeConfirmRemove
			}
			return m, nil
		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil
		case "left":
			m.scrollCol = max(0, m.scrollCol-4)
			return m, nil
		case "right":
			m.scrollCol += 4
			return m, nil
		case "up":
			m.scrollRow = max(0, m.scrollRow-2)
			return m, nil
		case "down":
			m.scrollRow += 2
			return m, nil
		}

		// Unclaimed keys go to the focused widget.
		if id := m.focusedID(); id != "" {
			if h, ok := m.bodies[id].(body.KeyHandler); ok {
				h.HandleKey(key)
			}
		}
		return m, nil
	}
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	row := msg.Y - canvasTop

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollRow = max(0, m.scrollRow-2)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scrollRow += 2
		return m, nil
	case tea.MouseButtonWheelLeft:
		m.scrollCol = max(0, m.scrollCol-4)
		return m, nil
	case tea.MouseButtonWheelRight:
		m.scrollCol += 4
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		b, region := m.hitTest(msg.X, row)
		if region == hitNone {
			return m, nil
		}
		m.focusWidget(b.id)
		px, py := m.toUnits(msg.X, row)
		switch region {
		case hitTitle:
			m.tracker.StartDrag(b.id, px, py)
		case hitResize:
			m.tracker.StartResize(b.id, px, py)
		}
		return m, nil

	case tea.MouseActionMotion:
		if !m.tracker.Active() {
			return m, nil
		}
		px, py := m.toUnits(msg.X, row)
		m.tracker.PointerMove(px, py)
		// Publish so a SaveNow landing mid-session sees current geometry,
		// but only pointer-up starts the debounce window: a drag held still
		// must not save mid-session.
		m.publish()
		return m, nil

	case tea.MouseActionRelease:
		if m.tracker.PointerUp() {
			m.publish()
			m.coord.NotifyGeometryChanged()
		}
		return m, nil
	}

	return m, nil
}

func (m *appModel) addWidget(id widget.ID) {
	if m.cfg.Add(id) {
		m.publish()
		m.coord.SaveNow()
	}
	if _, ok := m.bodies[id]; !ok {
		if b, ok := body.New(id, m.bodyEnv()); ok {
			m.bodies[id] = b
		}
	}
	m.focusWidget(id)
}

func (m *appModel) removeWidget(id widget.ID) {
	if m.cfg.Remove(id) {
		delete(m.bodies, id)
		m.publish()
		m.coord.SaveNow()
	}
	m.clampFocus()
}

func (m *appModel) focusWidget(id widget.ID) {
	for i, a := range m.cfg.Active() {
		if a == id {
			m.focusIdx = i
			return
		}
	}
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.teardown()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m, tea.Quit
}

// docsEqual compares documents after normalizing nil-vs-empty collections,
// which differ between a freshly read file and an in-memory snapshot.
func docsEqual(a, b prefs.Document) bool {
	norm := func(d prefs.Document) prefs.Document {
		if d.ActiveWidgets == nil {
			d.ActiveWidgets = []string{}
		}
		if d.Layouts == nil {
			d.Layouts = map[string]prefs.Rect{}
		}
		if d.Visibility == nil {
			d.Visibility = map[string]bool{}
		}
		if len(d.Extra) == 0 {
			d.Extra = nil
		}
		return d
	}
	return reflect.DeepEqual(norm(a), norm(b))
}
