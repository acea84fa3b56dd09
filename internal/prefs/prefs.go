// Package prefs is the preference store: one JSON document per user holding
// the dashboard keys this app owns plus whatever else lives alongside them.
//
// The canvas owns exactly three keys (the original backend's names are kept
// for compatibility with existing stored documents):
//
//	dashboard_active_widgets    []string
//	dashboard_layout            {id: {x,y,width,height}}
//	dashboard_widget_visibility {id: bool}
//
// Writes are partial: a store merges per key and must never clobber keys the
// caller did not set. All stores are best-effort key-value writers; there is
// no transaction across keys (last write wins).
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document key names, as stored.
const (
	KeyActiveWidgets = "dashboard_active_widgets"
	KeyLayout        = "dashboard_layout"
	KeyVisibility    = "dashboard_widget_visibility"
)

// Rect is the wire form of a widget rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Document is a partial view of the stored preference document.
//
// For the three owned keys, nil means "not set" and is skipped on write;
// a non-nil empty slice/map is a real value (e.g. "no active widgets") and
// is written. Extra carries every other top-level key verbatim: populated on
// Read, and written through on Write for callers (widget bodies) that own
// keys of their own.
type Document struct {
	ActiveWidgets []string        `json:"dashboard_active_widgets,omitempty"`
	Layouts       map[string]Rect `json:"dashboard_layout,omitempty"`
	Visibility    map[string]bool `json:"dashboard_widget_visibility,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Store reads and writes preference documents.
type Store interface {
	// Read returns the full stored document. A store with nothing stored
	// returns an empty Document and no error.
	Read(ctx context.Context) (Document, error)
	// Write persists the set keys of doc, leaving all other stored keys
	// untouched.
	Write(ctx context.Context, doc Document) error
}

// setKeys flattens the set keys of doc into raw JSON values, Extra included.
func setKeys(doc Document) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		out[key] = b
		return nil
	}
	if doc.ActiveWidgets != nil {
		if err := put(KeyActiveWidgets, doc.ActiveWidgets); err != nil {
			return nil, err
		}
	}
	if doc.Layouts != nil {
		if err := put(KeyLayout, doc.Layouts); err != nil {
			return nil, err
		}
	}
	if doc.Visibility != nil {
		if err := put(KeyVisibility, doc.Visibility); err != nil {
			return nil, err
		}
	}
	for k, v := range doc.Extra {
		switch k {
		case KeyActiveWidgets, KeyLayout, KeyVisibility:
			// Owned keys only travel through the typed fields.
			continue
		}
		out[k] = v
	}
	return out, nil
}

// fromRaw assembles a Document from a raw key-value map. Mistyped owned keys
// are dropped rather than failing the whole read: the caller falls back to
// defaults for that key, matching the load-failure policy.
func fromRaw(raw map[string]json.RawMessage) Document {
	var doc Document
	for k, v := range raw {
		switch k {
		case KeyActiveWidgets:
			var ids []string
			if err := json.Unmarshal(v, &ids); err == nil {
				if ids == nil {
					ids = []string{}
				}
				doc.ActiveWidgets = ids
			}
		case KeyLayout:
			var m map[string]Rect
			if err := json.Unmarshal(v, &m); err == nil {
				if m == nil {
					m = map[string]Rect{}
				}
				doc.Layouts = m
			}
		case KeyVisibility:
			var m map[string]bool
			if err := json.Unmarshal(v, &m); err == nil {
				if m == nil {
					m = map[string]bool{}
				}
				doc.Visibility = m
			}
		default:
			if doc.Extra == nil {
				doc.Extra = map[string]json.RawMessage{}
			}
			doc.Extra[k] = v
		}
	}
	return doc
}

// mergeRaw overlays the set keys of doc onto existing, returning the merged
// raw map. existing may be nil.
func mergeRaw(existing map[string]json.RawMessage, doc Document) (map[string]json.RawMessage, error) {
	keys, err := setKeys(doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(existing)+len(keys))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range keys {
		out[k] = v
	}
	return out, nil
}

// marshalRaw renders a raw map as an indented JSON document. encoding/json
// sorts map keys, so the output is stable across writes.
func marshalRaw(raw map[string]json.RawMessage) ([]byte, error) {
	return json.MarshalIndent(raw, "", "  ")
}
