package fractal

import "errors"

var (
	// ErrInvalidDepth is returned when a requested depth falls outside [MinDepth, MaxDepth].
	ErrInvalidDepth = errors.New("fractal: depth out of range")

	// ErrResourceExhausted is returned when level buffers cannot be allocated on the GPU or exceed
	// the configured byte budget.
	ErrResourceExhausted = errors.New("fractal: gpu resources exhausted")

	// ErrStepInFlight is returned by Step while a previous step has not finished.
	ErrStepInFlight = errors.New("fractal: step already in flight")

	// ErrInactive is returned by Update when the fractal has not been initialized.
	ErrInactive = errors.New("fractal: not active")

	// ErrNoMesh is returned by Initialize when a renderer is given without a mesh and material.
	ErrNoMesh = errors.New("fractal: mesh and material are required to render")
)
