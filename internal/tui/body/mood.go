package body

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Body-owned preference keys, inherited from the original backend.
const (
	keyMoodCurrent = "mood_widget_current"
	keyMoodHistory = "mood_widget_history"
)

var moodChoices = []string{"😀", "🙂", "😐", "😕", "😞"}

type moodHistoryEntry struct {
	Date string `json:"date"` // YYYY-MM-DD
	Mood string `json:"mood"`
}

type moodBody struct {
	env     Env
	current string
	history []moodHistoryEntry
}

func newMood(env Env) Body {
	b := &moodBody{env: env}
	if raw, ok := env.Doc.Extra[keyMoodCurrent]; ok {
		_ = json.Unmarshal(raw, &b.current)
	}
	if raw, ok := env.Doc.Extra[keyMoodHistory]; ok {
		_ = json.Unmarshal(raw, &b.history)
	}
	return b
}

// HandleKey lets 1..5 pick today's mood while the widget is focused.
func (b *moodBody) HandleKey(key string) bool {
	idx := -1
	switch key {
	case "1", "2", "3", "4", "5":
		idx = int(key[0] - '1')
	}
	if idx < 0 || idx >= len(moodChoices) {
		return false
	}
	b.setMood(moodChoices[idx])
	return true
}

func (b *moodBody) setMood(mood string) {
	b.current = mood
	today := b.env.now().Format("2006-01-02")
	// One entry per day; re-picking overwrites today's.
	if n := len(b.history); n > 0 && b.history[n-1].Date == today {
		b.history[n-1].Mood = mood
	} else {
		b.history = append(b.history, moodHistoryEntry{Date: today, Mood: mood})
	}
	b.env.saveExtra(keyMoodCurrent, b.current)
	b.env.saveExtra(keyMoodHistory, b.history)
}

func (b *moodBody) Render(width, height int) string {
	var sb strings.Builder
	cur := b.current
	if cur == "" {
		cur = "—"
	}
	fmt.Fprintf(&sb, "Today: %s\n\n", cur)
	for i, m := range moodChoices {
		fmt.Fprintf(&sb, "%d %s  ", i+1, m)
	}
	sb.WriteString("\n")
	if len(b.history) > 0 {
		sb.WriteString("\nRecent:\n")
		start := len(b.history) - 5
		if start < 0 {
			start = 0
		}
		for _, e := range b.history[start:] {
			if d, err := time.Parse("2006-01-02", e.Date); err == nil {
				fmt.Fprintf(&sb, "  %s  %s\n", d.Format("Mon 02 Jan"), e.Mood)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
