package common

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Vector2 is a point or direction on the navigation floor plane.
type Vector2 struct {
	X float32
	Y float32
}

func Vec2(x, y float32) Vector2 {
	return Vector2{X: x, Y: y}
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2) MulScalar(s float32) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

func (v Vector2) Dot(o Vector2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product of v and o.
func (v Vector2) Cross(o Vector2) float32 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vector2) Length() float32 {
	return math32.Hypot(v.X, v.Y)
}

func (v Vector2) DistanceTo(o Vector2) float32 {
	return v.Sub(o).Length()
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Vector3 is a position or direction in mesh-local or scene space.
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

func Vec3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Vec3FromArray converts the [x, y, z] form used by spec files.
func Vec3FromArray(a [3]float32) Vector3 {
	return Vector3{X: a[0], Y: a[1], Z: a[2]}
}

func (v Vector3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3) MulScalar(s float32) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vector3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

func (v Vector3) DistanceTo(o Vector3) float32 {
	return v.Sub(o).Length()
}

// Normal returns v scaled to unit length, or the zero vector when v is zero.
func (v Vector3) Normal() Vector3 {
	l := v.Length()
	if l == 0 {
		return Vector3{}
	}
	return v.MulScalar(1 / l)
}

// Lerp interpolates between v and o.
func (v Vector3) Lerp(o Vector3, t float32) Vector3 {
	return Vector3{X: Lerp(v.X, o.X, t), Y: Lerp(v.Y, o.Y, t), Z: Lerp(v.Z, o.Z, t)}
}

// Component returns the i-th component (0 = X, 1 = Y, 2 = Z).
func (v Vector3) Component(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		panic(fmt.Errorf("common: invalid vector component %d", i))
	}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
