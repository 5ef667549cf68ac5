package scene

import (
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCullingDisabled disables frustum culling, so every enabled fractal is drawn each frame.
//
// Parameters:
//   - disabled: true to draw fractals regardless of the camera frustum
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}

// WithPaused starts the scene with fractal propagation suspended.
func WithPaused(paused bool) SceneBuilderOption {
	return func(s *scene) {
		s.paused = paused
	}
}

// WithDefaultMesh replaces the mesh and material given to fractals configured without one.
// The material's pipeline is registered on the renderer when the scene is created.
//
// Parameters:
//   - m: the mesh drawn for every level
//   - mat: the material naming the pipeline
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaultMesh(m model.Model, mat material.Material) SceneBuilderOption {
	return func(s *scene) {
		s.mesh = m
		s.material = mat
	}
}

// WithDefaultLeafMesh replaces the mesh and material given to the deepest level of fractals
// configured without a leaf mesh.
//
// Parameters:
//   - m: the leaf mesh
//   - mat: the leaf material
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaultLeafMesh(m model.Model, mat material.Material) SceneBuilderOption {
	return func(s *scene) {
		s.leafMesh = m
		s.leafMaterial = mat
	}
}
