// Package display presents engine frames on a terminal or in text form and
// maps key presses onto engine commands. The ebiten window lives in the
// window subpackage.
package display

// Layout maps a logical grid onto a physical surface of Width×Height units
// (pixels for a window, character cells for a terminal).
type Layout struct {
	GridW, GridH  int
	Width, Height int
}

// CellSize is the physical size of one logical cell.
func (l Layout) CellSize() (float64, float64) {
	if l.GridW <= 0 || l.GridH <= 0 {
		return 0, 0
	}
	return float64(l.Width) / float64(l.GridW), float64(l.Height) / float64(l.GridH)
}

// Origin is the top-left corner of cell (col,row).
func (l Layout) Origin(col, row int) (float64, float64) {
	cw, ch := l.CellSize()
	return float64(col) * cw, float64(row) * ch
}

// Center is the middle of cell (col,row).
func (l Layout) Center(col, row int) (float64, float64) {
	cw, ch := l.CellSize()
	x, y := l.Origin(col, row)
	return x + cw/2, y + ch/2
}
