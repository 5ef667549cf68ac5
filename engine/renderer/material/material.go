package material

import "github.com/Carmen-Shannon/oxy-fractal/engine/renderer/pipeline"

// material is the implementation of the Material interface.
type material struct {
	name        string
	pipelineKey string
	pipeline    pipeline.Pipeline
}

// Material defines the interface for a render material: a named reference to the render
// pipeline a mesh is drawn with. Per-level colors live in the fractal's level uniforms, so a
// material carries no surface parameters of its own.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Pipeline retrieves the pipeline the material owns, or nil when it only references a key
	// registered elsewhere.
	//
	// Returns:
	//   - pipeline.Pipeline: the owned pipeline or nil
	Pipeline() pipeline.Pipeline
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{}
	for _, opt := range options {
		opt(m)
	}
	if m.name == "" {
		m.name = m.pipelineKey
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) Pipeline() pipeline.Pipeline {
	return m.pipeline
}
