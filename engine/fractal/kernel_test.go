package fractal

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackCompactScalesRotationColumns(t *testing.T) {
	var m CompactMatrix
	PackCompact(&m, common.QuatIdentity(), [3]float32{4, 5, 6}, 2)

	assert.Equal(t, [3]float32{2, 0, 0}, m.C0)
	assert.Equal(t, [3]float32{0, 2, 0}, m.C1)
	assert.Equal(t, [3]float32{0, 0, 2}, m.C2)
	assert.Equal(t, [3]float32{4, 5, 6}, m.C3)
	assert.Equal(t, CompactMatrixSize, m.Size())
	assert.Equal(t, [3]float32{6, 7, 8}, m.TransformPoint([3]float32{1, 1, 1}))
}

func TestUpdateRootAppliesHostTransform(t *testing.T) {
	root := Part{Rotation: common.QuatIdentity()}
	var m CompactMatrix
	host := common.Transform{Position: [3]float32{1, 2, 3}, Rotation: common.QuatRotateZ(math32.Pi / 2), Scale: 2}

	UpdateRoot(&root, &m, host, 0.25)

	assert.Equal(t, float32(0.25), root.SpinAngle)
	assert.Equal(t, host.Position, root.WorldPosition)
	assert.Equal(t, host.Position, m.C3)
	// the spin turns about the local Y axis, which the host rotation maps onto -X
	assertVecNear(t, [3]float32{-2, 0, 0}, m.C1, 1e-5)
}

func TestUpdatePartOffsetsAlongRoleDirection(t *testing.T) {
	parent := Part{WorldRotation: common.QuatIdentity(), WorldPosition: [3]float32{1, 0, 0}}
	part := Part{Direction: RoleForward.Direction(), Rotation: RoleForward.Rotation()}
	var m CompactMatrix

	UpdatePart(&parent, &part, &m, KernelParams{Scale: 0.5})

	assertVecNear(t, [3]float32{1, 0, 0.75}, part.WorldPosition, 1e-6)
	assert.Equal(t, part.WorldPosition, m.C3)
	assert.InDelta(t, 0.5, common.Vec3Length(m.C1), 1e-6)
	// the child's up axis follows its direction
	assertVecNear(t, [3]float32{0, 0, 0.5}, m.C1, 1e-6)
}

func TestUpdatePartSpinModes(t *testing.T) {
	parent := Part{WorldRotation: common.QuatIdentity(), SpinAngle: 0.75}

	uniform := Part{Direction: RoleUp.Direction(), Rotation: RoleUp.Rotation(), SpinAngle: 0.1}
	UpdatePart(&parent, &uniform, &CompactMatrix{}, KernelParams{SpinDelta: 0.2, Scale: 1, Mode: SpinUniform})
	assert.InDelta(t, 0.3, uniform.SpinAngle, 1e-6)

	inherited := Part{Direction: RoleUp.Direction(), Rotation: RoleUp.Rotation(), SpinAngle: 0.1}
	UpdatePart(&parent, &inherited, &CompactMatrix{}, KernelParams{SpinDelta: 0.2, Scale: 1, Mode: SpinInherited})
	assert.InDelta(t, 0.85, inherited.SpinAngle, 1e-6)
}

func TestSagSkippedWhenAxisDegenerate(t *testing.T) {
	cases := map[string]common.Quat{
		"parallel":      common.QuatIdentity(),
		"anti-parallel": common.QuatRotateX(math32.Pi),
	}
	for name, parentRotation := range cases {
		t.Run(name, func(t *testing.T) {
			parent := Part{WorldRotation: parentRotation}
			withSag := Part{Direction: RoleUp.Direction(), Rotation: RoleUp.Rotation()}
			without := withSag
			var a, b CompactMatrix

			UpdatePart(&parent, &withSag, &a, KernelParams{Scale: 1, Sag: true, MaxSag: 0.5})
			UpdatePart(&parent, &without, &b, KernelParams{Scale: 1})

			assert.Equal(t, without, withSag)
			assert.Equal(t, b, a)
			for _, c := range [][3]float32{a.C0, a.C1, a.C2, a.C3} {
				for _, v := range c {
					assert.False(t, math32.IsNaN(v))
				}
			}
		})
	}
}

func TestSagTipsHorizontalPartDown(t *testing.T) {
	parent := Part{WorldRotation: common.QuatIdentity()}
	part := Part{Direction: RoleRight.Direction(), Rotation: RoleRight.Rotation()}
	var m CompactMatrix
	const maxSag = 0.3

	UpdatePart(&parent, &part, &m, KernelParams{Scale: 0.5, Sag: true, MaxSag: maxSag})

	assert.InDelta(t, 0.75*math32.Cos(maxSag), part.WorldPosition[0], 1e-5)
	assert.InDelta(t, -0.75*math32.Sin(maxSag), part.WorldPosition[1], 1e-5)
	assert.InDelta(t, 0, part.WorldPosition[2], 1e-6)
}

func TestParseSpinMode(t *testing.T) {
	m, err := ParseSpinMode("Inherited")
	require.NoError(t, err)
	assert.Equal(t, SpinInherited, m)

	m, err = ParseSpinMode("")
	require.NoError(t, err)
	assert.Equal(t, SpinUniform, m)

	_, err = ParseSpinMode("sideways")
	assert.Error(t, err)
	assert.Equal(t, "inherited", SpinInherited.String())
}
