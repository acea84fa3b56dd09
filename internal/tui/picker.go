package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"pulseboard/internal/widget"
)

// The widget picker: a filterable list of every catalog widget. Widgets
// already on the board stay listed (adding them again is a no-op that just
// closes the picker), matching add-is-idempotent everywhere else.

type pickerItem struct {
	def     widget.Definition
	onBoard bool
}

func (i pickerItem) FilterValue() string { return i.def.Name + " " + i.def.Category }
func (i pickerItem) Title() string {
	if i.onBoard {
		return i.def.Name + " ·"
	}
	return i.def.Name
}
func (i pickerItem) Description() string {
	return fmt.Sprintf("%s · %d×%d", i.def.Category, i.def.DefaultWidth, i.def.DefaultHeight)
}

func newPickerList(onBoard func(widget.ID) bool, width, height int) list.Model {
	defs := widget.All()
	items := make([]list.Item, 0, len(defs))
	for _, def := range defs {
		items = append(items, pickerItem{def: def, onBoard: onBoard(def.ID)})
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, width, height)
	l.Title = "Add widget"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return l
}
