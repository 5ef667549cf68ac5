package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()

	assert.True(t, obj.Enabled())
	assert.Nil(t, obj.Fractal())
	assert.Equal(t, common.IdentityTransform(), obj.Transform())
}

func TestGameObjectOptions(t *testing.T) {
	f := fractal.NewFractal(fractal.WithDepth(2))
	obj := NewGameObject(
		WithID(7),
		WithEnabled(false),
		WithFractal(f),
		WithPosition([3]float32{1, 2, 3}),
		WithScale(4),
		WithRotationSpeed([3]float32{0, 1, 0}),
	)

	assert.Equal(t, uint64(7), obj.ID())
	assert.False(t, obj.Enabled())
	assert.Same(t, f, obj.Fractal())
	tr := obj.Transform()
	assert.Equal(t, [3]float32{1, 2, 3}, tr.Position)
	assert.Equal(t, float32(4), tr.Scale)
	assert.Equal(t, [3]float32{0, 1, 0}, obj.RotationSpeed())
}

func TestAdvanceIntegratesRotation(t *testing.T) {
	obj := NewGameObject(WithRotationSpeed([3]float32{0, math32.Pi / 2, 0}))

	for range 4 {
		obj.Advance(0.25)
	}

	// A quarter turn about Y maps +X to -Z.
	got := obj.Transform().Rotation.Rotate([3]float32{1, 0, 0})
	assert.InDelta(t, 0, got[0], 1e-5)
	assert.InDelta(t, 0, got[1], 1e-5)
	assert.InDelta(t, -1, got[2], 1e-5)
}

func TestAdvanceWithoutSpeedIsNoop(t *testing.T) {
	obj := NewGameObject()
	obj.SetRotation(common.QuatRotateZ(0.3))
	before := obj.Transform()

	obj.Advance(1)

	assert.Equal(t, before, obj.Transform())
}

func TestSetRotationNormalizes(t *testing.T) {
	obj := NewGameObject()
	obj.SetRotation(common.Quat{0, 0, 0, 2})

	q := obj.Transform().Rotation
	require.InDelta(t, 1, q[3], 1e-6)
}
