package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-5

func assertVec3InDelta(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestQuatRotateAxes(t *testing.T) {
	up := [3]float32{0, 1, 0}

	assertVec3InDelta(t, up, QuatIdentity().Rotate(up))
	assertVec3InDelta(t, [3]float32{1, 0, 0}, QuatRotateZ(-math32.Pi/2).Rotate(up))
	assertVec3InDelta(t, [3]float32{-1, 0, 0}, QuatRotateZ(math32.Pi/2).Rotate(up))
	assertVec3InDelta(t, [3]float32{0, 0, 1}, QuatRotateX(math32.Pi/2).Rotate(up))
	assertVec3InDelta(t, [3]float32{0, 0, -1}, QuatRotateX(-math32.Pi/2).Rotate(up))

	// spinning around Y leaves the Y axis fixed
	assertVec3InDelta(t, up, QuatRotateY(1.234).Rotate(up))
}

func TestQuatMulAppliesRightFirst(t *testing.T) {
	a := QuatRotateY(math32.Pi / 2)
	b := QuatRotateZ(-math32.Pi / 2)
	v := [3]float32{0, 1, 0}

	composed := a.Mul(b).Rotate(v)
	sequential := a.Rotate(b.Rotate(v))
	assertVec3InDelta(t, sequential, composed)
}

func TestQuatColumnsMatchRotate(t *testing.T) {
	q := QuatAxisAngle(Vec3Normalize([3]float32{1, 2, 3}), 0.7)
	c0, c1, c2 := q.Columns()

	assertVec3InDelta(t, q.Rotate([3]float32{1, 0, 0}), c0)
	assertVec3InDelta(t, q.Rotate([3]float32{0, 1, 0}), c1)
	assertVec3InDelta(t, q.Rotate([3]float32{0, 0, 1}), c2)
}

func TestQuatNormalize(t *testing.T) {
	assert.Equal(t, QuatIdentity(), Quat{}.Normalize())

	n := Quat{0, 2, 0, 2}.Normalize()
	assert.InDelta(t, 1.0, n[0]*n[0]+n[1]*n[1]+n[2]*n[2]+n[3]*n[3], eps)
}

func TestVec3Helpers(t *testing.T) {
	assert.Equal(t, [3]float32{0, 0, 1}, Vec3Cross([3]float32{1, 0, 0}, [3]float32{0, 1, 0}))
	assert.Equal(t, [3]float32{0, 0, 0}, Vec3Cross([3]float32{0, 1, 0}, [3]float32{0, 1, 0}))
	assert.InDelta(t, 5.0, Vec3Length([3]float32{3, 4, 0}), eps)
	assert.Equal(t, [3]float32{0, 0, 0}, Vec3Normalize([3]float32{}))
}
