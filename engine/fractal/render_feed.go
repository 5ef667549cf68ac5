package fractal

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/dustin/go-humanize"
)

// DefaultMaxBufferBytes is the default budget for all level buffers of one fractal.
const DefaultMaxBufferBytes = 256 << 20

const (
	levelMatrixBinding  = 0
	levelUniformBinding = 1
)

// Renderer is the subset of the engine renderer the fractal needs to create, fill and draw its
// level buffers.
type Renderer interface {
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

// Mesh is a drawable mesh whose provider holds initialized vertex and index buffers.
type Mesh interface {
	BindGroupProvider() bind_group_provider.BindGroupProvider
}

// Material names the render pipeline a level is drawn with.
type Material interface {
	PipelineKey() string
}

// LevelBindGroupLayout returns the layout of bind group 1 of the fractal shaders: the level's
// matrices as a read-only storage buffer and the level uniform.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the level bind group layout
func LevelBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Fractal Level",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    levelMatrixBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: CompactMatrixSize,
				},
			},
			{
				Binding:    levelUniformBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64((&LevelUniform{}).Size()),
				},
			},
		},
	}
}

// renderFeedConfig is what the render feed takes from the fractal configuration.
type renderFeedConfig struct {
	label          string
	palette        Palette
	seeds          SeedSource
	mesh           Mesh
	material       Material
	leafMesh       Mesh
	leafMaterial   Material
	maxBufferBytes uint64
}

// renderFeed owns one bind group per level and issues one instanced draw per level.
type renderFeed struct {
	tree *Tree
	cfg  renderFeedConfig

	providers []bind_group_provider.BindGroupProvider
	uniforms  []LevelUniform
	// writes and bindGroups are built in init and reused every frame
	writes     []bind_group_provider.BufferWrite
	bindGroups [][]bind_group_provider.BindGroupProvider
}

func newRenderFeed(tree *Tree, cfg renderFeedConfig) *renderFeed {
	if cfg.maxBufferBytes == 0 {
		cfg.maxBufferBytes = DefaultMaxBufferBytes
	}
	return &renderFeed{tree: tree, cfg: cfg}
}

// requiredBytes returns the GPU memory all level buffers need.
func (f *renderFeed) requiredBytes() uint64 {
	uniformSize := uint64((&LevelUniform{}).Size())
	return f.tree.ByteSize() + uint64(f.tree.Depth())*uniformSize
}

// init creates the level bind groups and writes the static level uniforms. On failure every
// provider created so far is released.
func (f *renderFeed) init(r Renderer) error {
	if f.cfg.mesh == nil || f.cfg.material == nil {
		return ErrNoMesh
	}
	if need := f.requiredBytes(); need > f.cfg.maxBufferBytes {
		return fmt.Errorf("%w: level buffers need %s, budget is %s",
			ErrResourceExhausted, humanize.IBytes(need), humanize.IBytes(f.cfg.maxBufferBytes))
	}

	depth := f.tree.Depth()
	f.providers = make([]bind_group_provider.BindGroupProvider, 0, depth)
	f.uniforms = make([]LevelUniform, depth)
	f.writes = make([]bind_group_provider.BufferWrite, depth)
	f.bindGroups = make([][]bind_group_provider.BindGroupProvider, depth)

	layout := LevelBindGroupLayout()
	uniformWrites := make([]bind_group_provider.BufferWrite, 0, depth)
	for L := range depth {
		level := f.tree.Level(L)
		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s Level %d", f.cfg.label, L))
		err := r.InitBindGroup(provider, layout, map[int]uint64{
			levelMatrixBinding:  level.ByteSize(),
			levelUniformBinding: uint64(f.uniforms[L].Size()),
		})
		if err != nil {
			provider.Release()
			f.release()
			return fmt.Errorf("%w: level %d (%s): %w", ErrResourceExhausted, L, humanize.IBytes(level.ByteSize()), err)
		}
		f.providers = append(f.providers, provider)

		colorA, colorB := f.cfg.palette.LevelColors(L, depth)
		f.uniforms[L] = LevelUniform{ColorA: colorA, ColorB: colorB}
		if f.cfg.seeds != nil {
			f.uniforms[L].Sequence = f.cfg.seeds.LevelSeed(L)
		}
		uniformWrites = append(uniformWrites, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  levelUniformBinding,
			Data:     f.uniforms[L].Marshal(),
		})

		f.writes[L] = bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  levelMatrixBinding,
			Data:     level.MatrixBytes(),
		}
		f.bindGroups[L] = []bind_group_provider.BindGroupProvider{nil, provider}
	}
	r.WriteBuffers(uniformWrites)
	return nil
}

// upload queues the matrices of every level for the GPU.
func (f *renderFeed) upload(r Renderer) {
	if len(f.writes) == 0 {
		return
	}
	r.WriteBuffers(f.writes)
}

// draw issues one instanced draw per level in level order. The camera provider is bound to
// group 0 and the level provider to group 1.
func (f *renderFeed) draw(r Renderer, camera bind_group_provider.BindGroupProvider) error {
	depth := len(f.providers)
	for L := range depth {
		mesh, material := f.cfg.mesh, f.cfg.material
		if L == depth-1 && f.cfg.leafMesh != nil && f.cfg.leafMaterial != nil {
			mesh, material = f.cfg.leafMesh, f.cfg.leafMaterial
		}
		f.bindGroups[L][0] = camera
		if err := r.DrawCall(material.PipelineKey(), mesh.BindGroupProvider(), uint32(LevelSize(L)), f.bindGroups[L]); err != nil {
			return fmt.Errorf("draw level %d: %w", L, err)
		}
	}
	return nil
}

// uniform returns the uniform written for level L.
func (f *renderFeed) uniform(level int) LevelUniform {
	return f.uniforms[level]
}

func (f *renderFeed) release() {
	for _, p := range f.providers {
		p.Release()
	}
	f.providers = nil
	f.writes = nil
	f.bindGroups = nil
}

// Bounds returns the box the whole fractal stays inside for a given root transform: centered on
// the root with half-extent 3 root scales on every axis. The series of child offsets
// 1.5 * (0.5 + 0.25 + ...) plus the leaf half-size never leaves it.
//
// Parameters:
//   - root: the root world transform
//
// Returns:
//   - center: the box center
//   - extents: the box half-size per axis
func Bounds(root common.Transform) (center, extents [3]float32) {
	e := 3 * root.Scale
	return root.Position, [3]float32{e, e, e}
}
