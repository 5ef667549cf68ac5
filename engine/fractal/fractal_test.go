package fractal

import (
	"runtime"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/bind_group_provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFractalDefaults(t *testing.T) {
	f := NewFractal()

	assert.NotEmpty(t, f.ID())
	assert.False(t, f.Active())
	assert.Equal(t, DefaultDepth, f.Depth())
	assert.Nil(t, f.Tree())
	assert.Equal(t, SpinUniform, f.Config().SpinMode)
	assert.Equal(t, uint64(DefaultMaxBufferBytes), f.Config().MaxBufferBytes)
	assert.Zero(t, f.Stats().Steps)
	assert.NotEqual(t, f.ID(), NewFractal().ID())
	assert.Equal(t, "fixed", NewFractal(WithID("fixed")).ID())
}

func TestUpdateWhileInactiveIsSkipped(t *testing.T) {
	f := NewFractal()
	assert.ErrorIs(t, f.Update(0.016, common.IdentityTransform()), ErrInactive)
	assert.NoError(t, f.Draw(&recordingRenderer{}, nil))
}

func TestCPUOnlyLifecycle(t *testing.T) {
	f := NewFractal(WithDepth(3), WithWorkers(1))
	require.NoError(t, f.Initialize(nil))
	require.True(t, f.Active())
	require.NoError(t, f.Initialize(nil), "initialize is idempotent")

	root := common.Transform{Position: [3]float32{0, 1, 0}, Rotation: common.QuatIdentity(), Scale: 2}
	require.NoError(t, f.Update(0, root))

	tree := f.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, 31, tree.PartCount())
	assertVecNear(t, [3]float32{0, 2.5, 0}, tree.Level(1).Parts[0].WorldPosition, 1e-6)
	assert.Equal(t, uint64(1), f.Stats().Steps)

	center, extents := f.Bounds()
	assert.Equal(t, root.Position, center)
	assert.Equal(t, [3]float32{6, 6, 6}, extents)

	r := &recordingRenderer{}
	require.NoError(t, f.Draw(r, nil))
	assert.Empty(t, r.draws)

	f.Shutdown()
	f.Shutdown()
	assert.False(t, f.Active())
	assert.Nil(t, f.Tree())
	assert.ErrorIs(t, f.Update(0, root), ErrInactive)
}

func TestInitializeRejectsInvalidDepth(t *testing.T) {
	f := NewFractal(WithDepth(MaxDepth + 1))
	assert.ErrorIs(t, f.Initialize(nil), ErrInvalidDepth)
	assert.False(t, f.Active())
}

func TestInitializeRequiresMeshWithRenderer(t *testing.T) {
	f := NewFractal(WithDepth(2))
	assert.ErrorIs(t, f.Initialize(&recordingRenderer{}), ErrNoMesh)
	assert.False(t, f.Active())
}

func TestInitializeFailsOnBufferBudget(t *testing.T) {
	f := NewFractal(
		WithDepth(3),
		WithMesh(newTestMesh("cube"), testMaterial(PipelineKey)),
		WithMaxBufferBytes(64),
	)
	assert.ErrorIs(t, f.Initialize(&recordingRenderer{}), ErrResourceExhausted)
	assert.False(t, f.Active())
}

func TestGPULifecycleUploadsAndDraws(t *testing.T) {
	r := &recordingRenderer{}
	f := NewFractal(WithDepth(3), WithWorkers(2), WithMesh(newTestMesh("cube"), testMaterial(PipelineKey)))
	require.NoError(t, f.Initialize(r))
	require.Len(t, r.inits, 3)

	require.NoError(t, f.Update(0.016, common.IdentityTransform()))
	require.Len(t, r.writes, 2)
	assert.Len(t, r.writes[1], 3)

	camera := bind_group_provider.NewBindGroupProvider("camera")
	require.NoError(t, f.Draw(r, camera))
	assert.Len(t, r.draws, 3)
}

func TestReconfigureRebuildsActiveFractal(t *testing.T) {
	r := &recordingRenderer{}
	f := NewFractal(WithDepth(2), WithWorkers(1), WithMesh(newTestMesh("cube"), testMaterial(PipelineKey)))
	require.NoError(t, f.Initialize(r))
	require.NoError(t, f.Update(1, common.IdentityTransform()))

	require.NoError(t, f.Reconfigure(WithDepth(4), WithSpinMode(SpinInherited)))

	assert.True(t, f.Active())
	assert.Equal(t, 4, f.Depth())
	assert.Equal(t, 4, f.Tree().Depth())
	assert.Equal(t, SpinInherited, f.Config().SpinMode)
	assert.Len(t, r.inits, 2+4)
	// a rebuilt tree starts from rest
	assert.Zero(t, f.Tree().Level(0).Parts[0].SpinAngle)
}

func TestRebuildsReleaseWorkers(t *testing.T) {
	before := runtime.NumGoroutine()

	f := NewFractal(WithDepth(3), WithWorkers(4))
	require.NoError(t, f.Initialize(nil))
	modes := []SpinMode{SpinUniform, SpinInherited}
	for i := range 50 {
		require.NoError(t, f.Reconfigure(WithSpinMode(modes[i%2])))
		require.NoError(t, f.Update(0.016, common.IdentityTransform()))
	}
	f.Shutdown()

	assertGoroutinesSettle(t, before)
	assert.Nil(t, f.Tree())
}

func TestReconfigureInactiveOnlyRecordsOptions(t *testing.T) {
	f := NewFractal()
	require.NoError(t, f.Reconfigure(WithDepth(6)))
	assert.False(t, f.Active())
	assert.Equal(t, 6, f.Depth())
}

func TestFailedReconfigureLeavesFractalInactive(t *testing.T) {
	f := NewFractal(WithDepth(2), WithWorkers(1))
	require.NoError(t, f.Initialize(nil))

	err := f.Reconfigure(WithDepth(0))
	assert.ErrorIs(t, err, ErrInvalidDepth)
	assert.False(t, f.Active())

	require.NoError(t, f.Reconfigure(WithDepth(3)))
	require.NoError(t, f.Initialize(nil))
	assert.Equal(t, 3, f.Tree().Depth())
}

func TestObserversFromBuilderOptions(t *testing.T) {
	var levels []int
	f := NewFractal(WithDepth(3), WithWorkers(1), WithLevelObserver(func(level int) { levels = append(levels, level) }))
	require.NoError(t, f.Initialize(nil))
	require.NoError(t, f.Update(0.1, common.IdentityTransform()))
	assert.Equal(t, []int{0, 1, 2}, levels)
}
