package valueobjects

import "math"

// Vec2 is a value object representing a point or direction in simulation
// world space. Coordinates are always finite; operations that would produce
// NaN or Inf clamp to zero instead so physics state can never be poisoned.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewVec2 creates a vector, sanitizing non-finite coordinates to zero.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: sanitize(x), Y: sanitize(y)}
}

// Zero returns the zero vector.
func Zero() Vec2 {
	return Vec2{}
}

// Add returns the component-wise sum.
func (v Vec2) Add(other Vec2) Vec2 {
	return NewVec2(v.X+other.X, v.Y+other.Y)
}

// Sub returns the component-wise difference.
func (v Vec2) Sub(other Vec2) Vec2 {
	return NewVec2(v.X-other.X, v.Y-other.Y)
}

// Scale returns the vector multiplied by a scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return NewVec2(v.X*s, v.Y*s)
}

// Length returns the Euclidean magnitude.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSquared returns the squared magnitude, avoiding the sqrt when only
// relative comparisons are needed (settle tests, distance floors).
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceTo returns the Euclidean distance to another point.
func (v Vec2) DistanceTo(other Vec2) float64 {
	return v.Sub(other).Length()
}

// Clamp constrains both coordinates to the given rectangle.
func (v Vec2) Clamp(minX, minY, maxX, maxY float64) Vec2 {
	return Vec2{
		X: math.Min(math.Max(v.X, minX), maxX),
		Y: math.Min(math.Max(v.Y, minY), maxY),
	}
}

// Equals compares two vectors within a small epsilon.
func (v Vec2) Equals(other Vec2) bool {
	const epsilon = 1e-9
	return math.Abs(v.X-other.X) < epsilon && math.Abs(v.Y-other.Y) < epsilon
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
