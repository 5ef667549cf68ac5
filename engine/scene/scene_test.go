package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/engine/camera"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records what the scene asks of the GPU.
type fakeRenderer struct {
	mu         sync.Mutex
	pipelines  []string
	meshes     []bind_group_provider.BindGroupProvider
	bindGroups []string
	writes     int
	lastWrites []bind_group_provider.BufferWrite
	draws      []string
	drawErr    error
}

func (r *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		r.pipelines = append(r.pipelines, p.PipelineKey())
	}
	return nil
}

func (r *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, _ []byte, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meshes = append(r.meshes, provider)
	return nil
}

func (r *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor, _ map[int]uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindGroups = append(r.bindGroups, provider.Label())
	return nil
}

func (r *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.lastWrites = append(r.lastWrites[:0], writes...)
}

func (r *fakeRenderer) DrawCall(key string, _ bind_group_provider.BindGroupProvider, _ uint32, _ []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drawErr != nil {
		return r.drawErr
	}
	r.draws = append(r.draws, key)
	return nil
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController()))
	s, err := NewScene("test", cam, r, options...)
	require.NoError(t, err)
	return s, r
}

func newHost(depth int, options ...game_object.GameObjectBuilderOption) game_object.GameObject {
	f := fractal.NewFractal(fractal.WithDepth(depth), fractal.WithWorkers(1))
	return game_object.NewGameObject(append([]game_object.GameObjectBuilderOption{game_object.WithFractal(f)}, options...)...)
}

func TestNewSceneRegistersResources(t *testing.T) {
	_, r := newTestScene(t)

	assert.Contains(t, r.pipelines, fractal.PipelineKey)
	assert.Contains(t, r.pipelines, fractal.LeafPipelineKey)
	assert.Len(t, r.meshes, 2)
	assert.Len(t, r.bindGroups, 1)
}

func TestNewSceneRequiresCameraAndRenderer(t *testing.T) {
	_, err := NewScene("x", nil, &fakeRenderer{})
	assert.Error(t, err)

	_, err = NewScene("x", camera.NewCamera(), nil)
	assert.Error(t, err)
}

func TestAddAssignsDefaultsAndInitializes(t *testing.T) {
	s, r := newTestScene(t)
	a, b := newHost(3), newHost(2)

	idA, err := s.Add(a)
	require.NoError(t, err)
	idB, err := s.Add(b)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, s.Count())
	assert.Same(t, b, s.Get(idB))
	assert.True(t, a.Fractal().Active())

	cfg := a.Fractal().Config()
	assert.NotNil(t, cfg.Mesh)
	assert.NotNil(t, cfg.LeafMesh)
	// Default meshes are uploaded once at scene creation.
	assert.Len(t, r.meshes, 2)
	// Camera plus one bind group per level of both fractals.
	assert.Len(t, r.bindGroups, 1+3+2)
}

func TestAddWithoutFractal(t *testing.T) {
	s, _ := newTestScene(t)

	_, err := s.Add(game_object.NewGameObject())
	assert.Error(t, err)
	assert.Zero(t, s.Count())
}

func TestAddInvalidDepth(t *testing.T) {
	s, _ := newTestScene(t)

	_, err := s.Add(newHost(fractal.MaxDepth + 1))
	assert.ErrorIs(t, err, fractal.ErrInvalidDepth)
}

func TestPrepareFrameStepsFractals(t *testing.T) {
	s, r := newTestScene(t)
	obj := newHost(2)
	_, err := s.Add(obj)
	require.NoError(t, err)

	require.NoError(t, s.PrepareFrame(1.0/60))
	require.NoError(t, s.PrepareFrame(1.0/60))

	assert.Equal(t, uint64(2), obj.Fractal().Stats().Steps)
	assert.Greater(t, r.writes, 0)
}

func TestPausedSkipsPropagation(t *testing.T) {
	s, _ := newTestScene(t, WithPaused(true))
	obj := newHost(2)
	_, err := s.Add(obj)
	require.NoError(t, err)
	assert.True(t, s.Paused())

	require.NoError(t, s.PrepareFrame(1.0/60))
	assert.Zero(t, obj.Fractal().Stats().Steps)

	s.SetPaused(false)
	require.NoError(t, s.PrepareFrame(1.0/60))
	assert.Equal(t, uint64(1), obj.Fractal().Stats().Steps)
}

func TestDisabledObjectsAreSkipped(t *testing.T) {
	s, r := newTestScene(t)
	obj := newHost(2, game_object.WithEnabled(false))
	_, err := s.Add(obj)
	require.NoError(t, err)

	require.NoError(t, s.PrepareFrame(1.0/60))
	require.NoError(t, s.DrawCalls())

	assert.Zero(t, obj.Fractal().Stats().Steps)
	assert.Empty(t, r.draws)
}

func TestDrawCallsCullsByBounds(t *testing.T) {
	s, r := newTestScene(t)
	near := newHost(3)
	far := newHost(3, game_object.WithPosition([3]float32{0, 0, 5000}))
	_, err := s.Add(near)
	require.NoError(t, err)
	_, err = s.Add(far)
	require.NoError(t, err)

	require.NoError(t, s.PrepareFrame(1.0/60))
	require.NoError(t, s.DrawCalls())

	assert.Equal(t, 1, s.Visible())
	assert.Equal(t, []string{fractal.PipelineKey, fractal.PipelineKey, fractal.LeafPipelineKey}, r.draws)

	r.draws = nil
	s.SetCullingDisabled(true)
	require.NoError(t, s.DrawCalls())
	assert.Equal(t, 2, s.Visible())
	assert.Len(t, r.draws, 6)
}

func TestDrawCallsPropagatesErrors(t *testing.T) {
	s, r := newTestScene(t)
	_, err := s.Add(newHost(2))
	require.NoError(t, err)
	require.NoError(t, s.PrepareFrame(1.0/60))

	r.drawErr = errors.New("lost device")
	assert.ErrorContains(t, s.DrawCalls(), "lost device")
}

func TestRemoveAndClearShutDown(t *testing.T) {
	s, _ := newTestScene(t)
	a, b := newHost(2), newHost(2)
	idA, err := s.Add(a)
	require.NoError(t, err)
	_, err = s.Add(b)
	require.NoError(t, err)

	s.Remove(idA)
	assert.False(t, a.Fractal().Active())
	assert.Nil(t, s.Get(idA))
	assert.Equal(t, 1, s.Count())

	s.Remove(999)
	assert.Equal(t, 1, s.Count())

	s.Clear()
	assert.False(t, b.Fractal().Active())
	assert.Zero(t, s.Count())
}
