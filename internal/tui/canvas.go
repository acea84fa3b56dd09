package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"pulseboard/internal/widget"
)

// The canvas model works in abstract layout units; the terminal works in
// cells. One column is 10 units and one row is 20 units, so a default
// 500x300 widget renders as a 50x15 box. Positions floor, sizes ceil, so a
// widget never renders smaller than its stored geometry.
const (
	unitsPerCol = 10
	unitsPerRow = 20
)

func colsFloor(units int) int { return units / unitsPerCol }
func rowsFloor(units int) int { return units / unitsPerRow }
func colsCeil(units int) int  { return (units + unitsPerCol - 1) / unitsPerCol }
func rowsCeil(units int) int  { return (units + unitsPerRow - 1) / unitsPerRow }

// resizeGlyph marks the bottom-right cell of every widget box.
const resizeGlyph = "◢"

type hitRegion int

const (
	hitNone hitRegion = iota
	hitTitle
	hitBody
	hitResize
)

// boxGeom is a widget's on-screen rectangle in cells, scroll already applied.
type boxGeom struct {
	id         widget.ID
	x, y, w, h int
}

// visibleBoxes returns the geometry of every rendered widget in insertion
// order. Hidden widgets and ids without a known body are skipped entirely;
// they occupy no space and receive no events.
func (m appModel) visibleBoxes() []boxGeom {
	var out []boxGeom
	for _, id := range m.cfg.Active() {
		if !m.cfg.Visible(id) {
			continue
		}
		if _, ok := m.bodies[id]; !ok {
			continue
		}
		r, ok := m.cfg.Layout(id)
		if !ok {
			continue
		}
		out = append(out, boxGeom{
			id: id,
			x:  colsFloor(r.X) - m.scrollCol,
			y:  rowsFloor(r.Y) - m.scrollRow,
			w:  colsCeil(r.Width),
			h:  rowsCeil(r.Height),
		})
	}
	return out
}

// hitTest maps a screen cell to a widget region. Later insertion renders on
// top, so scan back to front.
func (m appModel) hitTest(col, row int) (boxGeom, hitRegion) {
	boxes := m.visibleBoxes()
	for i := len(boxes) - 1; i >= 0; i-- {
		b := boxes[i]
		if col < b.x || col >= b.x+b.w || row < b.y || row >= b.y+b.h {
			continue
		}
		switch {
		case col == b.x+b.w-1 && row == b.y+b.h-1:
			return b, hitResize
		case row == b.y:
			return b, hitTitle
		default:
			return b, hitBody
		}
	}
	return boxGeom{}, hitNone
}

// toUnits converts a screen cell to canvas units, scroll applied.
func (m appModel) toUnits(col, row int) (int, int) {
	return (col + m.scrollCol) * unitsPerCol, (row + m.scrollRow) * unitsPerRow
}

// renderCanvas composites every visible widget box into a width x height
// cell grid. Overlap is allowed; insertion order decides stacking.
func (m appModel) renderCanvas(width, height int) string {
	lines := make([]string, height)
	blank := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = blank
	}

	for _, b := range m.visibleBoxes() {
		box := m.renderBox(b, b.id == m.focusedID())
		for i, ln := range box {
			row := b.y + i
			if row < 0 || row >= height {
				continue
			}
			lines[row] = overlayLine(lines[row], width, b.x, ln, b.w)
		}
	}
	return strings.Join(lines, "\n")
}

// overlayLine splices overlay (olW cells wide) into base (baseW cells wide)
// at column col, clipping at both edges.
func overlayLine(base string, baseW, col int, overlay string, olW int) string {
	if col >= baseW || col+olW <= 0 {
		return base
	}
	if col < 0 {
		overlay = xansi.Cut(overlay, -col, olW)
		olW += col
		col = 0
	}
	if col+olW > baseW {
		overlay = xansi.Cut(overlay, 0, baseW-col)
		olW = baseW - col
	}
	left := xansi.Cut(base, 0, col)
	right := xansi.Cut(base, col+olW, baseW)
	return left + overlay + right
}

// renderBox renders one widget as b.h lines of exactly b.w cells: a title
// row (the drag handle), the body, and the resize glyph in the last cell.
func (m appModel) renderBox(b boxGeom, focused bool) []string {
	def, _ := widget.Lookup(b.id)
	title := def.Name
	if title == "" {
		title = string(b.id)
	}

	lines := make([]string, 0, b.h)
	lines = append(lines, styleWidgetTitle(focused).Render(normalizePane(" "+title, b.w, 1)))

	if b.h < 2 {
		return lines[:1]
	}

	bodyStyle := styleWidgetBody()
	if b.h > 2 {
		var content string
		if body, ok := m.bodies[b.id]; ok {
			content = body.Render(b.w-2, b.h-2)
		}
		inner := strings.Split(normalizePane(content, b.w-2, b.h-2), "\n")
		for _, ln := range inner {
			lines = append(lines, bodyStyle.Render(" "+ln+" "))
		}
	}

	last := normalizePane("", b.w-1, 1)
	lines = append(lines, bodyStyle.Render(last)+
		bodyStyle.Foreground(colorResizeHandleFg).Render(resizeGlyph))
	return lines
}
