// Package widget holds the static catalog of dashboard widgets.
//
// The catalog is data, not code: ids, display metadata and default sizes live
// in an embedded YAML manifest so adding a widget kind means adding one entry
// there (plus a body renderer). Lookups are total and never panic: stored
// preferences may reference an id this build no longer ships, and the canvas
// must render nothing for it rather than crash.
package widget

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ID identifies a widget kind. The set of valid ids is closed per build and
// defined by the embedded catalog.
type ID string

// Well-known ids, mirrored from the catalog for use in code.
const (
	OpenTasks    ID = "openTasks"
	Quote        ID = "quote"
	ActivityFeed ID = "activityFeed"
	Clock        ID = "clock"
	Mood         ID = "mood"
	Notes        ID = "notes"
	Timer        ID = "timer"
	Calculator   ID = "calculator"
)

// Definition is the static metadata for one widget kind. Immutable after
// process start.
type Definition struct {
	ID            ID     `yaml:"id"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Category      string `yaml:"category"`
	DefaultWidth  int    `yaml:"defaultWidth"`
	DefaultHeight int    `yaml:"defaultHeight"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var (
	catalogOrder []Definition
	catalogByID  map[ID]Definition
)

func init() {
	defs, err := parseCatalog(catalogYAML)
	if err != nil {
		// The catalog is embedded; failing to parse it is a build defect.
		panic(fmt.Sprintf("widget: embedded catalog is invalid: %v", err))
	}
	catalogOrder = defs
	catalogByID = make(map[ID]Definition, len(defs))
	for _, d := range defs {
		catalogByID[d.ID] = d
	}
}

func parseCatalog(b []byte) ([]Definition, error) {
	var doc struct {
		Widgets []Definition `yaml:"widgets"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if len(doc.Widgets) == 0 {
		return nil, fmt.Errorf("catalog has no widgets")
	}
	seen := map[ID]bool{}
	for _, d := range doc.Widgets {
		if d.ID == "" {
			return nil, fmt.Errorf("widget with empty id")
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate widget id %q", d.ID)
		}
		seen[d.ID] = true
		if d.DefaultWidth <= 0 || d.DefaultHeight <= 0 {
			return nil, fmt.Errorf("widget %q has non-positive default size", d.ID)
		}
	}
	return doc.Widgets, nil
}

// Lookup returns the definition for id. ok is false for ids this build does
// not know about; callers are expected to skip those, not fail.
func Lookup(id ID) (Definition, bool) {
	d, ok := catalogByID[id]
	return d, ok
}

// All returns the catalog in manifest order. The slice is a copy.
func All() []Definition {
	out := make([]Definition, len(catalogOrder))
	copy(out, catalogOrder)
	return out
}

// Categories returns the distinct category labels in first-appearance order.
func Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range catalogOrder {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}
