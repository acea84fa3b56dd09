// Package body holds the widget bodies: the content rendered inside each
// canvas container. The canvas only positions, shows and hides them; a body
// never touches geometry and never sees the drag/resize handles.
//
// Dispatch over widget kind is a constructor table, not a switch: adding a
// widget kind means one catalog entry plus one entry here.
package body

import (
	"time"

	"github.com/charmbracelet/log"

	"pulseboard/internal/prefs"
	"pulseboard/internal/widget"
)

// Env is what a body gets from the canvas at construction time.
type Env struct {
	// Doc is the hydrated preference document; bodies read their own
	// (unowned-by-the-canvas) keys from Doc.Extra.
	Doc prefs.Document
	// SaveExtra persists a single body-owned preference key, best-effort.
	// May be nil in tests.
	SaveExtra func(key string, v any)
	Logger    *log.Logger
	Now       func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Env) saveExtra(key string, v any) {
	if e.SaveExtra != nil {
		e.SaveExtra(key, v)
	}
}

// Body renders widget content into a box of the given inner size (cells).
type Body interface {
	Render(width, height int) string
}

// KeyHandler is implemented by bodies that react to keys while their widget
// is focused. Handled keys stop there; the canvas never sees them (the
// event-boundary rule, inverted for a keyboard world).
type KeyHandler interface {
	HandleKey(key string) bool
}

// Ticker is implemented by bodies that change with time; the canvas ticks
// them once per second.
type Ticker interface {
	Tick(now time.Time)
}

var constructors = map[widget.ID]func(Env) Body{
	widget.OpenTasks:    func(env Env) Body { return newOpenTasks(env) },
	widget.Quote:        func(env Env) Body { return newQuote(env) },
	widget.ActivityFeed: func(env Env) Body { return newActivityFeed(env) },
	widget.Clock:        func(env Env) Body { return newClock(env) },
	widget.Mood:         func(env Env) Body { return newMood(env) },
	widget.Notes:        func(env Env) Body { return newNotes(env) },
	widget.Timer:        func(env Env) Body { return newTimer(env) },
	widget.Calculator:   func(env Env) Body { return newCalculator(env) },
}

// New constructs the body for id. ok is false for ids without a body (an id
// from a stored document this build does not know); the canvas renders
// nothing for those.
func New(id widget.ID, env Env) (Body, bool) {
	ctor, ok := constructors[id]
	if !ok {
		return nil, false
	}
	return ctor(env), true
}
