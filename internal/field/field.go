// Package field implements the animated constellation: a fixed set of
// drifting dots linked to each other and to the pointer when close enough.
//
// A Field owns all of its state. Hosts feed it pointer and resize events and
// call Frame once per display refresh with a Surface to draw into.
package field

import (
	"math/rand"
)

// Params tunes a Field. Distances are in surface units (pixels for the
// window host).
type Params struct {
	DotCount     int
	MaxSpeed     float64
	DotRadius    float64
	Threshold    float64
	PointerReach float64
	LinkWidth    float64
	PointerWidth float64
	DotAlpha     float64
	PointerAlpha float64
	Palette      Palette
}

// DefaultParams is the gold constellation: 100 dots linked within 150 units.
func DefaultParams() Params {
	return Params{
		DotCount:     100,
		MaxSpeed:     0.5,
		DotRadius:    2,
		Threshold:    150,
		PointerReach: 50,
		LinkWidth:    0.5,
		PointerWidth: 1,
		DotAlpha:     0.8,
		PointerAlpha: 0.5,
		Palette:      Palette{Base: Gold},
	}
}

type Field struct {
	params  Params
	dots    []Dot
	width   float64
	height  float64
	pointer Pointer
	boost   float64
	frames  uint64
}

// New allocates exactly p.DotCount dots placed uniformly within w x h.
func New(p Params, w, h float64, rng *rand.Rand) *Field {
	count := p.DotCount
	if count < 0 {
		count = 0
	}
	f := &Field{
		params: p,
		dots:   make([]Dot, count),
		width:  w,
		height: h,
	}
	for i := range f.dots {
		f.dots[i] = newDot(rng, w, h, p.MaxSpeed)
	}
	return f
}

// Resize sets the reflecting bounds. Dot positions are left alone; dots that
// end up outside drift back in on their own.
func (f *Field) Resize(w, h float64) {
	f.width = w
	f.height = h
}

func (f *Field) Bounds() (w, h float64) {
	return f.width, f.height
}

func (f *Field) SetPointer(x, y float64) {
	f.pointer = At(x, y)
}

func (f *Field) ClearPointer() {
	f.pointer = Pointer{}
}

func (f *Field) Pointer() Pointer {
	return f.pointer
}

// SetBoost widens the link threshold to Threshold*(1+b). b is clamped to [0, 1].
func (f *Field) SetBoost(b float64) {
	f.boost = clamp01(b)
}

// SetHueSpeed changes palette rotation; zero restores the base colour.
func (f *Field) SetHueSpeed(speed float64) {
	f.params.Palette.HueSpeed = speed
}

func (f *Field) HueSpeed() float64 {
	return f.params.Palette.HueSpeed
}

// Dots returns the live particle slice. Callers must not retain it across frames.
func (f *Field) Dots() []Dot {
	return f.dots
}

// Frames is the number of completed Frame calls.
func (f *Field) Frames() uint64 {
	return f.frames
}

func (f *Field) threshold() float64 {
	return f.params.Threshold * (1 + f.boost)
}

// Frame clears s, then advances and draws each dot in order. Links from dot i
// go only to dots j > i, which have not moved yet this frame.
func (f *Field) Frame(s Surface) {
	s.Clear()

	base := f.params.Palette.at(f.frames)
	dotColor := withAlpha(base, f.params.DotAlpha)
	pointerColor := withAlpha(base, f.params.PointerAlpha)
	threshold := f.threshold()
	px, py, hasPointer := f.pointer.Position()

	for i := range f.dots {
		d := &f.dots[i]
		d.advance(f.width, f.height)
		s.FillCircle(d.X, d.Y, f.params.DotRadius, dotColor)

		for j := i + 1; j < len(f.dots); j++ {
			o := &f.dots[j]
			dd := dist(d.X, d.Y, o.X, o.Y)
			if dd < threshold {
				s.StrokeLine(d.X, d.Y, o.X, o.Y, f.params.LinkWidth, withAlpha(base, LinkOpacity(dd, threshold)))
			}
		}

		if !hasPointer {
			continue
		}
		if dist(d.X, d.Y, px, py) < threshold+f.params.PointerReach {
			s.StrokeLine(d.X, d.Y, px, py, f.params.PointerWidth, pointerColor)
		}
	}

	f.frames++
}

// LinkOpacity fades linearly from 1 at distance 0 to 0 at threshold.
func LinkOpacity(d, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	return clamp01(1 - d/threshold)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
