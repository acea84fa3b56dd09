// Package dashboard is the widget-canvas engine: the per-user configuration
// (which widgets are active, where they sit, whether they are shown), the
// placement rule for newly added widgets, the drag/resize pointer sessions,
// and the persistence coordinator that pushes state to the preference store.
//
// Everything here works in abstract layout units; the renderer owns the
// mapping to terminal cells. Widgets may overlap freely: the canvas never
// rearranges anything the user did not move.
package dashboard

// Hard geometry floors, in layout units. A widget can never be resized or
// hydrated into a rectangle smaller than this.
const (
	MinWidth  = 200
	MinHeight = 150
)

// Rect is a widget's position and size in layout units.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// clamped returns r with position floored at the canvas origin and size
// floored at the minimums. Every mutation path goes through this.
func (r Rect) clamped() Rect {
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.Width < MinWidth {
		r.Width = MinWidth
	}
	if r.Height < MinHeight {
		r.Height = MinHeight
	}
	return r
}

// Bottom returns the y coordinate just below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }
