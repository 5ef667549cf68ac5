package fractal

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawRecord struct {
	key       string
	mesh      bind_group_provider.BindGroupProvider
	instances uint32
	groups    []bind_group_provider.BindGroupProvider
}

type writeRecord struct {
	provider bind_group_provider.BindGroupProvider
	binding  int
	size     int
}

// recordingRenderer captures every call instead of talking to a GPU.
type recordingRenderer struct {
	mu       sync.Mutex
	failInit int // 1-based InitBindGroup call to fail, 0 never
	initErr  error
	inits    []map[int]uint64
	writes   [][]writeRecord
	draws    []drawRecord
}

func (r *recordingRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, sizes map[int]uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits = append(r.inits, sizes)
	if r.failInit == len(r.inits) {
		return r.initErr
	}
	return nil
}

func (r *recordingRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]writeRecord, 0, len(writes))
	for _, w := range writes {
		batch = append(batch, writeRecord{provider: w.Provider, binding: w.Binding, size: len(w.Data)})
	}
	r.writes = append(r.writes, batch)
}

func (r *recordingRenderer) DrawCall(key string, mesh bind_group_provider.BindGroupProvider, instances uint32, groups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws = append(r.draws, drawRecord{key: key, mesh: mesh, instances: instances, groups: append([]bind_group_provider.BindGroupProvider(nil), groups...)})
	return nil
}

type testMesh struct {
	provider bind_group_provider.BindGroupProvider
}

func (m *testMesh) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.provider
}

type testMaterial string

func (m testMaterial) PipelineKey() string {
	return string(m)
}

func newTestMesh(label string) *testMesh {
	return &testMesh{provider: bind_group_provider.NewBindGroupProvider(label)}
}

func newTestFeed(t *testing.T, depth int, mutate func(*renderFeedConfig)) *renderFeed {
	t.Helper()
	tree, err := BuildTree(depth)
	require.NoError(t, err)
	cfg := renderFeedConfig{
		label:    "test",
		palette:  DefaultPalette(),
		seeds:    NewNoiseSeedSource(1),
		mesh:     newTestMesh("cube"),
		material: testMaterial(PipelineKey),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return newRenderFeed(tree, cfg)
}

func TestRenderFeedInitSizesLevelBuffers(t *testing.T) {
	feed := newTestFeed(t, 3, nil)
	r := &recordingRenderer{}

	require.NoError(t, feed.init(r))

	require.Len(t, r.inits, 3)
	for L, sizes := range r.inits {
		assert.Equal(t, uint64(LevelSize(L)*CompactMatrixSize), sizes[levelMatrixBinding])
		assert.Equal(t, uint64(48), sizes[levelUniformBinding])
	}

	require.Len(t, r.writes, 1, "level uniforms are written once")
	require.Len(t, r.writes[0], 3)
	for _, w := range r.writes[0] {
		assert.Equal(t, levelUniformBinding, w.binding)
		assert.Equal(t, 48, w.size)
	}

	u := feed.uniform(2)
	assert.Equal(t, float32(1), u.ColorA[3])
	for _, v := range u.Sequence {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestRenderFeedUploadWritesEveryLevel(t *testing.T) {
	feed := newTestFeed(t, 4, nil)
	r := &recordingRenderer{}
	require.NoError(t, feed.init(r))

	feed.upload(r)
	feed.upload(r)

	require.Len(t, r.writes, 3)
	for _, batch := range r.writes[1:] {
		require.Len(t, batch, 4)
		for L, w := range batch {
			assert.Equal(t, levelMatrixBinding, w.binding)
			assert.Equal(t, LevelSize(L)*CompactMatrixSize, w.size)
			assert.Same(t, feed.providers[L], w.provider)
		}
	}
}

func TestRenderFeedDrawsOncePerLevel(t *testing.T) {
	leaf := newTestMesh("leaf")
	feed := newTestFeed(t, 3, func(c *renderFeedConfig) {
		c.leafMesh = leaf
		c.leafMaterial = testMaterial(LeafPipelineKey)
	})
	r := &recordingRenderer{}
	require.NoError(t, feed.init(r))
	camera := bind_group_provider.NewBindGroupProvider("camera")

	require.NoError(t, feed.draw(r, camera))

	require.Len(t, r.draws, 3)
	for L, d := range r.draws {
		assert.Equal(t, uint32(LevelSize(L)), d.instances)
		require.Len(t, d.groups, 2)
		assert.Same(t, camera, d.groups[0])
		assert.Same(t, feed.providers[L], d.groups[1])
	}
	assert.Equal(t, PipelineKey, r.draws[0].key)
	assert.Equal(t, PipelineKey, r.draws[1].key)
	assert.Equal(t, LeafPipelineKey, r.draws[2].key)
	assert.Same(t, leaf.provider, r.draws[2].mesh)
}

func TestRenderFeedRejectsBudgetOverrun(t *testing.T) {
	feed := newTestFeed(t, 3, func(c *renderFeedConfig) { c.maxBufferBytes = 100 })
	r := &recordingRenderer{}

	err := feed.init(r)
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.Empty(t, r.inits)
}

func TestRenderFeedReleasesOnInitFailure(t *testing.T) {
	gpuErr := errors.New("out of device memory")
	feed := newTestFeed(t, 4, nil)
	r := &recordingRenderer{failInit: 3, initErr: gpuErr}

	err := feed.init(r)
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.ErrorIs(t, err, gpuErr)
	assert.Nil(t, feed.providers)
	assert.Empty(t, r.writes)
}

func TestRenderFeedRequiresMesh(t *testing.T) {
	feed := newTestFeed(t, 2, func(c *renderFeedConfig) { c.mesh = nil })
	assert.ErrorIs(t, feed.init(&recordingRenderer{}), ErrNoMesh)
}

func TestBounds(t *testing.T) {
	center, extents := Bounds(common.Transform{Position: [3]float32{1, 2, 3}, Rotation: common.QuatIdentity(), Scale: 2})
	assert.Equal(t, [3]float32{1, 2, 3}, center)
	assert.Equal(t, [3]float32{6, 6, 6}, extents)
}

func TestBoundsContainDeepestLevel(t *testing.T) {
	s := newTestScheduler(t, 6, SchedulerConfig{Workers: 1, Sag: true, MaxSag: 0.5})
	root := common.Transform{Position: [3]float32{2, 0, -1}, Rotation: common.QuatRotateY(0.7), Scale: 1}
	require.NoError(t, s.Step(0.3, root))

	center, extents := Bounds(root)
	for L := range 6 {
		for _, m := range s.Tree().Level(L).Matrices {
			for i := range 3 {
				assert.LessOrEqual(t, m.C3[i]-center[i], extents[i])
				assert.GreaterOrEqual(t, m.C3[i]-center[i], -extents[i])
			}
		}
	}
}

func TestPaletteLevelColors(t *testing.T) {
	p := DefaultPalette()

	a, b := p.LevelColors(3, 4)
	assert.Equal(t, toRGBA(p.LeafA), a)
	assert.Equal(t, toRGBA(p.LeafB), b)

	a, _ = p.LevelColors(0, 4)
	assert.Equal(t, p.GradientA.At(0), a)
	a, b = p.LevelColors(1, 4)
	assert.Equal(t, p.GradientA.At(1.0/3), a)
	assert.Equal(t, p.GradientB.At(1.0/3), b)
	a, _ = p.LevelColors(2, 4)
	assert.Equal(t, p.GradientA.At(2.0/3), a)

	// a two-level tree has one inner level, which takes the start of the gradient
	a, _ = p.LevelColors(0, 2)
	assert.Equal(t, p.GradientA.At(0), a)
}

func TestNewGradient(t *testing.T) {
	g, err := NewGradient("#000000", "#ffffff")
	require.NoError(t, err)
	black, white := g.At(-1), g.At(2)
	for i := range 3 {
		assert.InDelta(t, 0, black[i], 1e-4)
		assert.InDelta(t, 1, white[i], 1e-4)
	}
	assert.Equal(t, float32(1), white[3])

	_, err = NewGradient("nope", "#ffffff")
	assert.Error(t, err)
}

func TestNoiseSeedSourceIsDeterministic(t *testing.T) {
	a := NewNoiseSeedSource(42)
	b := NewNoiseSeedSource(42)
	for L := range MaxDepth {
		assert.Equal(t, a.LevelSeed(L), b.LevelSeed(L))
	}
	assert.NotEqual(t, a.LevelSeed(1), a.LevelSeed(2))
}
