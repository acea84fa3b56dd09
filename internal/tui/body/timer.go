package body

import (
	"fmt"
	"time"
)

const defaultFocusSession = 25 * time.Minute

type timerBody struct {
	remaining time.Duration
	running   bool
	lastTick  time.Time
}

func newTimer(env Env) Body {
	return &timerBody{remaining: defaultFocusSession, lastTick: env.now()}
}

// HandleKey: space/enter toggles, r resets.
func (b *timerBody) HandleKey(key string) bool {
	switch key {
	case " ", "enter":
		b.running = !b.running
		return true
	case "r":
		b.running = false
		b.remaining = defaultFocusSession
		return true
	}
	return false
}

func (b *timerBody) Tick(now time.Time) {
	if b.running {
		b.remaining -= now.Sub(b.lastTick)
		if b.remaining <= 0 {
			b.remaining = 0
			b.running = false
		}
	}
	b.lastTick = now
}

func (b *timerBody) Render(width, height int) string {
	rem := b.remaining.Round(time.Second)
	state := "paused"
	if b.running {
		state = "running"
	}
	if b.remaining == 0 {
		state = "done!"
	}
	return fmt.Sprintf("%02d:%02d\n\n%s\n\nspace start/pause · r reset",
		int(rem.Minutes()), int(rem.Seconds())%60, state)
}
