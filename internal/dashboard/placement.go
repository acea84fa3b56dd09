package dashboard

import "pulseboard/internal/widget"

// Layout constants for first-load seeding: widgets flow into two columns.
const (
	seedColumnX = 520
	seedRowH    = 320
)

// Vertical gap between the bottom of the board and a newly added widget.
const addGap = 20

// seedRect places the widget at position index in the two-column first-load
// flow: even indexes in the left column, odd in the right.
func seedRect(def widget.Definition, index int) Rect {
	x := 0
	if index%2 == 1 {
		x = seedColumnX
	}
	return Rect{
		X:      x,
		Y:      (index / 2) * seedRowH,
		Width:  def.DefaultWidth,
		Height: def.DefaultHeight,
	}.clamped()
}

// nextRect places a widget added to an existing board below everything else.
// Horizontal packing is deliberately not attempted; overlap is allowed and
// the user drags things where they want them. The max-reduce over an empty
// layout map is 0, so the result is always well defined.
func nextRect(def widget.Definition, layouts map[widget.ID]Rect) Rect {
	maxBottom := 0
	for _, r := range layouts {
		if b := r.Bottom(); b > maxBottom {
			maxBottom = b
		}
	}
	return Rect{
		X:      0,
		Y:      maxBottom + addGap,
		Width:  def.DefaultWidth,
		Height: def.DefaultHeight,
	}.clamped()
}
