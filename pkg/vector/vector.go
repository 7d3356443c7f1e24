// Package vector provides 2D vectors and angle arithmetic for positions and
// headings in the game world.
package vector

import "math"

const (
	Pi     = math.Pi
	TwoPi  = 2 * math.Pi
	HalfPi = math.Pi / 2
)

// Vector is a point or displacement in world coordinates.
type Vector struct {
	X, Y float64
}

// Zero is the zero vector.
var Zero = Vector{}

func (v Vector) Add(w Vector) Vector { return Vector{v.X + w.X, v.Y + w.Y} }
func (v Vector) Sub(w Vector) Vector { return Vector{v.X - w.X, v.Y - w.Y} }
func (v Vector) Mul(f float64) Vector { return Vector{v.X * f, v.Y * f} }
func (v Vector) Dot(w Vector) float64 { return v.X*w.X + v.Y*w.Y }

// Norm returns the length of v.
func (v Vector) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// Theta returns the angle of v in [-π, π].
func (v Vector) Theta() float64 {
	return math.Atan2(v.Y, v.X)
}

// Polar returns the vector with the given magnitude and angle.
func Polar(magnitude, theta float64) Vector {
	return Vector{magnitude * math.Cos(theta), magnitude * math.Sin(theta)}
}

// Rotate rotates v counterclockwise by theta radians.
func (v Vector) Rotate(theta float64) Vector {
	c, s := math.Cos(theta), math.Sin(theta)
	return Vector{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// WithLen returns a vector with v's direction and the given length.
// The zero vector stays zero.
func (v Vector) WithLen(length float64) Vector {
	norm := v.Norm()
	if norm == 0 {
		return Zero
	}
	return v.Mul(length / norm)
}

// CapLen returns v shortened to at most limit.
func (v Vector) CapLen(limit float64) Vector {
	if v.Norm() <= limit {
		return v
	}
	return v.WithLen(limit)
}

// Unit returns v scaled to length 1.
func (v Vector) Unit() Vector {
	return v.WithLen(1)
}

// Modulo returns a mod b with the sign of b, so Modulo(-10, 7) == 4.
func Modulo(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// Mod2Pi reduces theta to [-π, π].
func Mod2Pi(theta float64) float64 {
	return Mod2PiNonNeg(theta+Pi) - Pi
}

// Mod2PiNonNeg reduces theta to [0, 2π].
func Mod2PiNonNeg(theta float64) float64 {
	t := math.Mod(theta, TwoPi)
	if t < 0 {
		t += TwoPi
	}
	return t
}

// Mod2PiNonPos reduces theta to [-2π, 0].
func Mod2PiNonPos(theta float64) float64 {
	return Mod2PiNonNeg(theta) - TwoPi
}
