package game_object

import (
	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject starts enabled.
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithFractal attaches the fractal this object hosts.
//
// Parameters:
//   - f: the fractal to host
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the fractal
func WithFractal(f fractal.Fractal) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.frac = f
	}
}

// WithPosition sets the initial world position.
func WithPosition(position [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Position = position
	}
}

// WithRotation sets the initial orientation.
func WithRotation(rotation common.Quat) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Rotation = rotation.Normalize()
	}
}

// WithScale sets the initial uniform scale.
//
// Parameters:
//   - scale: root scale, halved at each level below the root
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(scale float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Scale = scale
	}
}

// WithRotationSpeed sets the initial per-axis angular velocity in radians per second.
func WithRotationSpeed(speed [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = speed
	}
}
