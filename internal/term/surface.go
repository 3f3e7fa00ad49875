package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

const (
	dotGlyph = '●'
	// dots outrank any line passing through the same cell
	dotWeight = 2.0
)

type mark struct {
	glyph  rune
	c      color.NRGBA
	weight float64
}

// cellSurface rasterises field frames onto a grid of terminal cells. Each cell
// stands for cellW x cellH field units and keeps only its strongest mark.
type cellSurface struct {
	cols, rows   int
	cellW, cellH float64
	cells        []mark
}

func newCellSurface(cols, rows int, cellW, cellH float64) *cellSurface {
	s := &cellSurface{cellW: cellW, cellH: cellH}
	s.resize(cols, rows)
	return s
}

func (s *cellSurface) resize(cols, rows int) {
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.cells = make([]mark, s.cols*s.rows)
}

// extent is the field size covered by the grid.
func (s *cellSurface) extent() (w, h float64) {
	return float64(s.cols) * s.cellW, float64(s.rows) * s.cellH
}

func (s *cellSurface) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / s.cellW)), int(math.Floor(y / s.cellH))
}

func (s *cellSurface) put(cx, cy int, glyph rune, c color.NRGBA, weight float64) {
	if cx < 0 || cy < 0 || cx >= s.cols || cy >= s.rows || weight <= 0 {
		return
	}
	m := &s.cells[cy*s.cols+cx]
	if weight > m.weight {
		*m = mark{glyph: glyph, c: c, weight: weight}
	}
}

func (s *cellSurface) Clear() {
	clear(s.cells)
}

func (s *cellSurface) FillCircle(x, y, _ float64, c color.NRGBA) {
	cx, cy := s.cellOf(x, y)
	s.put(cx, cy, dotGlyph, c, dotWeight+float64(c.A)/255)
}

// StrokeLine walks the cells between both ends (Bresenham) with a glyph
// matching the slope. Width is ignored; alpha sets priority and brightness.
func (s *cellSurface) StrokeLine(x1, y1, x2, y2, _ float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	x0, y0 := s.cellOf(x1, y1)
	xe, ye := s.cellOf(x2, y2)
	glyph := slopeGlyph(xe-x0, ye-y0)
	weight := float64(c.A) / 255

	dx := abs(xe - x0)
	dy := -abs(ye - y0)
	sx, sy := 1, 1
	if x0 > xe {
		sx = -1
	}
	if y0 > ye {
		sy = -1
	}
	e := dx + dy
	for {
		s.put(x0, y0, glyph, c, weight)
		if x0 == xe && y0 == ye {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func slopeGlyph(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case adx == 0 && ady == 0:
		return '·'
	case ady*2 <= adx:
		return '-'
	case adx*2 <= ady:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// flush copies the grid to screen. Colours are blended over black by alpha.
func (s *cellSurface) flush(screen tcell.Screen) {
	screen.Clear()
	for cy := 0; cy < s.rows; cy++ {
		for cx := 0; cx < s.cols; cx++ {
			m := s.cells[cy*s.cols+cx]
			if m.weight == 0 {
				continue
			}
			a := float64(m.c.A) / 255
			fg := tcell.NewRGBColor(int32(float64(m.c.R)*a), int32(float64(m.c.G)*a), int32(float64(m.c.B)*a))
			screen.SetContent(cx, cy, m.glyph, nil, tcell.StyleDefault.Foreground(fg).Background(tcell.ColorBlack))
		}
	}
	screen.Show()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
