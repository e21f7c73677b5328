package unit

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2    { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scl(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64       { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dst(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) IsZero() bool       { return v.X == 0 && v.Y == 0 }

// SetLength rescales v to length l. The zero vector stays zero.
func (v Vec2) SetLength(l float64) Vec2 {
	n := v.Len()
	if n == 0 {
		return v
	}
	return v.Scl(l / n)
}

// Limit caps the vector's length at l.
func (v Vec2) Limit(l float64) Vec2 {
	if n := v.Len(); n > l && n > 0 {
		return v.Scl(l / n)
	}
	return v
}

// Trns returns a vector of length l pointing at angle degrees.
func Trns(angle, l float64) Vec2 {
	r := angle * math.Pi / 180
	return Vec2{math.Cos(r) * l, math.Sin(r) * l}
}

// Angle returns the vector's direction in degrees, [0, 360).
func (v Vec2) Angle() float64 {
	a := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	return a
}

// moveToward rotates angle toward target by at most step degrees, taking the
// shorter way around.
func moveToward(angle, target, step float64) float64 {
	diff := math.Mod(target-angle+540, 360) - 180
	if math.Abs(diff) <= step {
		return math.Mod(target+360, 360)
	}
	if diff > 0 {
		angle += step
	} else {
		angle -= step
	}
	return math.Mod(angle+360, 360)
}

func approach(from, to, step float64) float64 {
	if from < to {
		return math.Min(from+step, to)
	}
	return math.Max(from-step, to)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
