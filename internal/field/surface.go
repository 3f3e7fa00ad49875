package field

import "image/color"

// Surface is the drawing target a Field renders into once per frame.
// Colours are non-premultiplied.
type Surface interface {
	Clear()
	FillCircle(x, y, r float64, c color.NRGBA)
	StrokeLine(x1, y1, x2, y2, width float64, c color.NRGBA)
}

// Pointer is the last known cursor position. The zero value is unset.
type Pointer struct {
	x, y float64
	ok   bool
}

// At returns a pointer set to (x, y).
func At(x, y float64) Pointer {
	return Pointer{x: x, y: y, ok: true}
}

// Position reports the coordinates and whether the pointer has been set.
func (p Pointer) Position() (x, y float64, ok bool) {
	return p.x, p.y, p.ok
}
