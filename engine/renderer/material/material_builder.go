package material

import "github.com/Carmen-Shannon/oxy-fractal/engine/renderer/pipeline"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithPipelineKey is an option builder that references a pipeline registered elsewhere by key.
//
// Parameters:
//   - key: the pipeline key to associate with the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithPipeline is an option builder that gives the material its own pipeline. The material's
// pipeline key becomes the pipeline's key, and the scene registers the pipeline with the renderer.
//
// Parameters:
//   - p: the pipeline
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline option to a material
func WithPipeline(p pipeline.Pipeline) MaterialBuilderOption {
	return func(m *material) {
		m.pipeline = p
		m.pipelineKey = p.PipelineKey()
	}
}
