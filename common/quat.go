package common

import "github.com/chewxy/math32"

// Quat is a rotation quaternion stored as (x, y, z, w), matching the component order the GPU
// shaders and the rest of the engine use for orientations.
type Quat [4]float32

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatAxisAngle builds a rotation of angle radians around axis. The axis must be unit length.
//
// Parameters:
//   - axis: the unit rotation axis
//   - angle: the rotation angle in radians
//
// Returns:
//   - Quat: the rotation
func QuatAxisAngle(axis [3]float32, angle float32) Quat {
	s, c := math32.Sincos(angle * 0.5)
	return Quat{axis[0] * s, axis[1] * s, axis[2] * s, c}
}

// QuatRotateX returns a rotation of angle radians around the world X axis.
func QuatRotateX(angle float32) Quat {
	return QuatAxisAngle([3]float32{1, 0, 0}, angle)
}

// QuatRotateY returns a rotation of angle radians around the world Y axis.
func QuatRotateY(angle float32) Quat {
	return QuatAxisAngle([3]float32{0, 1, 0}, angle)
}

// QuatRotateZ returns a rotation of angle radians around the world Z axis.
func QuatRotateZ(angle float32) Quat {
	return QuatAxisAngle([3]float32{0, 0, 1}, angle)
}

// Mul composes two rotations. The result applies b first, then q.
//
// Parameters:
//   - b: the right-hand rotation
//
// Returns:
//   - Quat: q * b
func (q Quat) Mul(b Quat) Quat {
	return Quat{
		q[3]*b[0] + q[0]*b[3] + q[1]*b[2] - q[2]*b[1],
		q[3]*b[1] - q[0]*b[2] + q[1]*b[3] + q[2]*b[0],
		q[3]*b[2] + q[0]*b[1] - q[1]*b[0] + q[2]*b[3],
		q[3]*b[3] - q[0]*b[0] - q[1]*b[1] - q[2]*b[2],
	}
}

// Rotate applies the rotation to the vector v.
//
// Parameters:
//   - v: the vector to rotate
//
// Returns:
//   - [3]float32: the rotated vector
func (q Quat) Rotate(v [3]float32) [3]float32 {
	// v' = v + w*t + u x t, with u = q.xyz and t = 2 * (u x v)
	u := [3]float32{q[0], q[1], q[2]}
	t := Vec3Scale(Vec3Cross(u, v), 2)
	return Vec3Add(Vec3Add(v, Vec3Scale(t, q[3])), Vec3Cross(u, t))
}

// Normalize returns q scaled to unit length. The zero quaternion normalizes to identity.
func (q Quat) Normalize() Quat {
	l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l == 0 {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quat{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// Columns returns the three basis columns of the rotation matrix equivalent to q.
//
// Returns:
//   - c0, c1, c2: the rotated X, Y and Z axes
func (q Quat) Columns() (c0, c1, c2 [3]float32) {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	c0 = [3]float32{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy)}
	c1 = [3]float32{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx)}
	c2 = [3]float32{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy)}
	return c0, c1, c2
}
