package fractal

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-fractal/engine/camera"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/fractal_vertex.wgsl
var vertexSource string

//go:embed assets/fractal_fragment.wgsl
var fragmentSource string

const (
	// PipelineKey is the key of the fractal pipeline with back-face culling.
	PipelineKey = "fractal"

	// LeafPipelineKey is the key of the leaf pipeline, which draws both faces so flattened leaf
	// meshes stay visible from below.
	LeafPipelineKey = "fractal_leaf"
)

// VertexShader returns the instanced vertex shader. Group 0 is the camera and group 1 is the
// level bind group.
func VertexShader() shader.Shader {
	return shader.NewShader("fractal_vertex", shader.ShaderTypeVertex,
		camera.GPUCameraUniformSource+GPULevelUniformSource+vertexSource,
		shader.WithBindGroupLayout(0, camera.BindGroupLayout()),
		shader.WithBindGroupLayout(1, LevelBindGroupLayout()),
		shader.WithVertexLayout(model.VertexLayout()),
	)
}

// FragmentShader returns the lit fragment shader.
func FragmentShader() shader.Shader {
	return shader.NewShader("fractal_fragment", shader.ShaderTypeFragment,
		camera.GPUCameraUniformSource+fragmentSource,
		shader.WithBindGroupLayout(0, camera.BindGroupLayout()),
	)
}

// NewPipelines returns the inner-level and leaf pipelines sharing the fractal shader pair.
//
// Returns:
//   - []pipeline.Pipeline: the pipelines keyed PipelineKey and LeafPipelineKey
func NewPipelines() []pipeline.Pipeline {
	vs, fs := VertexShader(), FragmentShader()
	shared := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	}
	return []pipeline.Pipeline{
		pipeline.NewPipeline(PipelineKey, append(shared, pipeline.WithCullMode(wgpu.CullModeBack))...),
		pipeline.NewPipeline(LeafPipelineKey, append(shared, pipeline.WithCullMode(wgpu.CullModeNone))...),
	}
}
