package systems

import "math"

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSq(x1, y1, x2, y2))
}

// DistanceSq returns the squared distance between two points.
func DistanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// Normalize returns the unit vector of (x, y). The zero vector maps to (0, 0).
func Normalize(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}

// Wrap maps v into [0, size). Values exactly at size wrap to 0.
func Wrap(v, size float64) float64 {
	r := math.Mod(v, size)
	if r < 0 {
		r += size
	}
	// math.Mod of a tiny negative can round up to size
	if r >= size {
		r = 0
	}
	return r
}

// Clamp clamps v between lo and hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// LerpColor interpolates between a and b. t is clamped to [0, 1].
func LerpColor(a, b Color, t float64) Color {
	t = Clamp(t, 0, 1)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
