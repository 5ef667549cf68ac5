package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShaderDefaults(t *testing.T) {
	vs := NewShader("fractal_vert", ShaderTypeVertex, "@vertex fn vs_main() {}")
	fs := NewShader("fractal_frag", ShaderTypeFragment, "@fragment fn fs_main() {}")

	assert.Equal(t, "fractal_vert", vs.Key())
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Equal(t, ShaderTypeFragment, fs.ShaderType())
	assert.Empty(t, vs.BindGroupLayoutDescriptors())
	assert.Empty(t, vs.VertexLayouts())
}

func TestNewShaderWithLayouts(t *testing.T) {
	desc := wgpu.BindGroupLayoutDescriptor{
		Label: "level",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
		}},
	}
	vs := NewShader("v", ShaderTypeVertex, "src",
		WithEntryPoint("main"),
		WithBindGroupLayout(1, desc),
		WithVertexLayout(wgpu.VertexBufferLayout{ArrayStride: 24}),
	)

	assert.Equal(t, "main", vs.EntryPoint())
	require.Len(t, vs.BindGroupLayoutDescriptor(1).Entries, 1)
	assert.Empty(t, vs.BindGroupLayoutDescriptor(0).Entries)
	require.Len(t, vs.VertexLayouts(), 1)
	assert.Equal(t, uint64(24), vs.VertexLayouts()[0].ArrayStride)
}

func TestNewShaderRequiresSource(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", ShaderTypeVertex, "") })
}
