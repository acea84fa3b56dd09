package body

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// keyNotes is the body-owned preference key: [{id, text, createdAt}].
const keyNotes = "dashboard_notes"

type note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type notesBody struct {
	notes []note
}

func newNotes(env Env) Body {
	b := &notesBody{}
	if raw, ok := env.Doc.Extra[keyNotes]; ok {
		_ = json.Unmarshal(raw, &b.notes)
	}
	if len(b.notes) == 0 {
		// First run: seed a welcome note so the widget is not a void, and
		// persist it so the id stays stable across sessions.
		b.notes = []note{{
			ID:        uuid.NewString(),
			Text:      "**Welcome!** Edit your notes with `pulseboard prefs` or any client that writes `" + keyNotes + "`.",
			CreatedAt: env.now().Format(time.RFC3339),
		}}
		env.saveExtra(keyNotes, b.notes)
	}
	return b
}

var (
	notesRendererMu sync.Mutex
	// Cache renderers by wrap width; constructing one per frame is slow and
	// WithAutoStyle can block probing the terminal.
	notesRenderers = map[int]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	notesRendererMu.Lock()
	r := notesRenderers[width]
	notesRendererMu.Unlock()

	if r == nil {
		// Fixed style instead of WithAutoStyle: auto-detection can block on
		// terminal queries mid-render.
		style := "light"
		if termenv.HasDarkBackground() {
			style = "dark"
		}
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		notesRendererMu.Lock()
		if existing := notesRenderers[width]; existing != nil {
			r = existing
		} else {
			notesRenderers[width] = rr
			r = rr
		}
		notesRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (b *notesBody) Render(width, height int) string {
	var parts []string
	for _, n := range b.notes {
		parts = append(parts, renderMarkdown(n.Text, width))
	}
	return strings.Join(parts, "\n")
}
