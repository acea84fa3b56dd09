package body

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cache keys written by sync clients; the bodies only read them.
const (
	keyTasksCache    = "dashboard_tasks_cache"
	keyActivityCache = "dashboard_activity_cache"
)

type taskEntry struct {
	Title string `json:"title"`
	Due   string `json:"due,omitempty"`
}

type openTasksBody struct {
	tasks []taskEntry
}

func newOpenTasks(env Env) Body {
	b := &openTasksBody{}
	if raw, ok := env.Doc.Extra[keyTasksCache]; ok {
		_ = json.Unmarshal(raw, &b.tasks)
	}
	return b
}

func (b *openTasksBody) Render(width, height int) string {
	if len(b.tasks) == 0 {
		return "No open tasks.\n\nTasks synced by a connected client\nshow up here."
	}
	var sb strings.Builder
	for _, t := range b.tasks {
		if t.Due != "" {
			fmt.Fprintf(&sb, "• %s  (%s)\n", t.Title, t.Due)
		} else {
			fmt.Fprintf(&sb, "• %s\n", t.Title)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

type activityEntry struct {
	When string `json:"when"`
	Text string `json:"text"`
}

type activityFeedBody struct {
	entries []activityEntry
}

func newActivityFeed(env Env) Body {
	b := &activityFeedBody{}
	if raw, ok := env.Doc.Extra[keyActivityCache]; ok {
		_ = json.Unmarshal(raw, &b.entries)
	}
	return b
}

func (b *activityFeedBody) Render(width, height int) string {
	if len(b.entries) == 0 {
		return "Nothing yet.\n\nActivity from your workspace\nshows up here."
	}
	var sb strings.Builder
	for _, e := range b.entries {
		fmt.Fprintf(&sb, "%s  %s\n", e.When, e.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
