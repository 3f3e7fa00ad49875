package field

import (
	"image/color"
	"math"
)

// Gold is the default dot and link colour.
var Gold = color.NRGBA{R: 212, G: 175, B: 55, A: 255}

// Palette yields the colour for a given frame. With HueSpeed zero it always
// returns Base; otherwise the hue rotates HueSpeed turns per frame starting
// from Base's hue.
type Palette struct {
	Base     color.NRGBA
	HueSpeed float64
}

func (p Palette) at(frame uint64) color.NRGBA {
	if p.HueSpeed == 0 {
		return p.Base
	}
	h, s, v := rgbToHsv(p.Base.R, p.Base.G, p.Base.B)
	h += float64(frame) * p.HueSpeed * 360
	r, g, b := hsvToRgb(h, s, v)
	return color.NRGBA{R: r, G: g, B: b, A: p.Base.A}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(clamp01(a) * 255))
	return c
}

// hsvToRgb converts HSV to RGB (hue: 0-360, saturation: 0-1, value: 0-1)
func hsvToRgb(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8(math.Round((r + m) * 255)), uint8(math.Round((g + m) * 255)), uint8(math.Round((b + m) * 255))
}

func rgbToHsv(r8, g8, b8 uint8) (h, s, v float64) {
	r, g, b := float64(r8)/255, float64(g8)/255, float64(b8)/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
