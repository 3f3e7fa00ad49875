package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var backgroundColor = color.RGBA{R: 10, G: 12, B: 20, A: 255}

// screenSurface draws field frames onto the ebiten screen image.
type screenSurface struct {
	screen      *ebiten.Image
	transparent bool
}

func (s *screenSurface) Clear() {
	if s.transparent {
		s.screen.Clear()
		return
	}
	s.screen.Fill(backgroundColor)
}

func (s *screenSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	vector.DrawFilledCircle(s.screen, float32(x), float32(y), float32(r), c, true)
}

func (s *screenSurface) StrokeLine(x1, y1, x2, y2, width float64, c color.NRGBA) {
	vector.StrokeLine(s.screen, float32(x1), float32(y1), float32(x2), float32(y2), float32(width), c, true)
}
