package field

import (
	"math"
	"math/rand"
)

// Dot is a single animated particle. Velocity is in units per frame.
type Dot struct {
	X, Y   float64
	VX, VY float64
}

func newDot(rng *rand.Rand, w, h, maxSpeed float64) Dot {
	return Dot{
		X:  rng.Float64() * w,
		Y:  rng.Float64() * h,
		VX: (rng.Float64() - 0.5) * 2 * maxSpeed,
		VY: (rng.Float64() - 0.5) * 2 * maxSpeed,
	}
}

// advance moves the dot one frame and reverses its heading on any axis whose
// bound it has crossed. The position itself is never corrected.
func (d *Dot) advance(w, h float64) {
	d.X += d.VX
	d.Y += d.VY

	d.VX = reflect(d.X, d.VX, w)
	d.VY = reflect(d.Y, d.VY, h)
}

// reflect points v back toward [0, limit] once pos has left it.
func reflect(pos, v, limit float64) float64 {
	switch {
	case pos < 0:
		return math.Abs(v)
	case pos > limit:
		return -math.Abs(v)
	}
	return v
}

func dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
