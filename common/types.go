// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Transform is a rigid world transform with uniform scale.
// It is how a host (a game object, a test, a CLI demo) hands its current placement to a fractal each frame.
type Transform struct {
	// Position is the world-space translation.
	Position [3]float32
	// Rotation is the world-space orientation.
	Rotation Quat
	// Scale is the uniform scale factor applied to the root and halved at every level below it.
	Scale float32
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    1,
	}
}
