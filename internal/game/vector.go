package game

import "math"

// Vec2 is a 2D point or direction in simulation coordinates (y grows downward).
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{X: v.X * o.X, Y: v.Y * o.Y} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Normalize returns the unit vector in v's direction, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Finite reports whether both components are real numbers.
func (v Vec2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ClampLen shortens v to max if it is longer, keeping its direction. A
// non-finite v clamps to zero.
func (v Vec2) ClampLen(max float64) Vec2 {
	if !v.Finite() {
		return Vec2{}
	}
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

func clampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
