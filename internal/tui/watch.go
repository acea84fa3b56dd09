package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// newPrefsWatcher watches the directory holding the preference file; the
// file itself is replaced atomically (temp + rename), which would drop an
// inode-level watch.
func newPrefsWatcher(path string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// watchCmd blocks on the next relevant filesystem event. Update re-issues it
// after every storeChangedMsg so the stream keeps flowing.
func (m appModel) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w, path := m.watcher, m.watchPath
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					return storeChangedMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
				// Watch errors are not fatal; the board just stops following
				// external edits for that event.
			}
		}
	}
}
