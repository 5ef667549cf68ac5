package fractal

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-fractal/common"
)

// SpinMode selects how a child's spin angle advances each step.
type SpinMode int

const (
	// SpinUniform advances every part by the same per-step delta.
	SpinUniform SpinMode = iota

	// SpinInherited advances each child by its parent's current spin angle, so deeper levels
	// turn progressively faster.
	SpinInherited
)

func (m SpinMode) String() string {
	switch m {
	case SpinInherited:
		return "inherited"
	default:
		return "uniform"
	}
}

// ParseSpinMode maps a config name to a SpinMode.
//
// Parameters:
//   - name: "uniform" or "inherited", case insensitive
//
// Returns:
//   - SpinMode: the matching mode
//   - error: an error if the name is unknown
func ParseSpinMode(name string) (SpinMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "uniform":
		return SpinUniform, nil
	case "inherited":
		return SpinInherited, nil
	}
	return SpinUniform, fmt.Errorf("unknown spin mode %q", name)
}

// sagEpsilon is the sag axis length below which the correction is skipped.
const sagEpsilon = 1e-6

var worldUp = [3]float32{0, 1, 0}

// KernelParams are the per-level inputs of UpdatePart, fixed for the duration of a level.
type KernelParams struct {
	// SpinDelta is the spin advance for this step in radians.
	SpinDelta float32
	// Scale is the absolute scale of the level (root scale * 0.5^level).
	Scale float32
	// Mode selects uniform or inherited spin.
	Mode SpinMode
	// Sag enables the gravity sag correction.
	Sag bool
	// MaxSag is the sag angle in radians applied when a part lies fully horizontal.
	MaxSag float32
}

// UpdateRoot advances the root's spin and composes it under the host transform.
//
// Parameters:
//   - root: the root part, updated in place
//   - out: the root's matrix slot
//   - host: the world transform of the owning object
//   - spinDelta: the spin advance in radians
func UpdateRoot(root *Part, out *CompactMatrix, host common.Transform, spinDelta float32) {
	root.SpinAngle += spinDelta
	root.WorldRotation = host.Rotation.Mul(root.Rotation.Mul(common.QuatRotateY(root.SpinAngle)))
	root.WorldPosition = host.Position
	PackCompact(out, root.WorldRotation, root.WorldPosition, host.Scale)
}

// UpdatePart derives a child's world state from its parent's. The parent must already hold this
// step's world state.
//
// Parameters:
//   - parent: the parent part, read only
//   - part: the child part, updated in place
//   - out: the child's matrix slot
//   - p: the level parameters
func UpdatePart(parent, part *Part, out *CompactMatrix, p KernelParams) {
	switch p.Mode {
	case SpinInherited:
		part.SpinAngle += parent.SpinAngle
	default:
		part.SpinAngle += p.SpinDelta
	}

	base := parent.WorldRotation
	if p.Sag {
		if sag, ok := sagRotation(parent.WorldRotation, part.Rotation, p.MaxSag); ok {
			base = sag.Mul(parent.WorldRotation)
		}
	}

	part.WorldRotation = base.Mul(part.Rotation.Mul(common.QuatRotateY(part.SpinAngle)))
	offset := base.Rotate(common.Vec3Scale(part.Direction, 1.5*p.Scale))
	part.WorldPosition = common.Vec3Add(parent.WorldPosition, offset)
	PackCompact(out, part.WorldRotation, part.WorldPosition, p.Scale)
}

// sagRotation returns the rotation that tips a part toward the ground in proportion to how
// horizontal its up axis is. ok is false when the up axis is parallel to world up.
func sagRotation(parentRotation, localRotation common.Quat, maxSag float32) (common.Quat, bool) {
	upAxis := parentRotation.Mul(localRotation).Rotate(worldUp)
	axis := common.Vec3Cross(worldUp, upAxis)
	magnitude := common.Vec3Length(axis)
	if magnitude < sagEpsilon {
		return common.Quat{}, false
	}
	return common.QuatAxisAngle(common.Vec3Scale(axis, 1/magnitude), maxSag*magnitude), true
}

// PackCompact writes the scaled rotation columns and the translation into out.
//
// Parameters:
//   - out: the destination matrix
//   - rotation: the world rotation
//   - position: the world position
//   - scale: the uniform scale
func PackCompact(out *CompactMatrix, rotation common.Quat, position [3]float32, scale float32) {
	c0, c1, c2 := rotation.Columns()
	out.C0 = common.Vec3Scale(c0, scale)
	out.C1 = common.Vec3Scale(c1, scale)
	out.C2 = common.Vec3Scale(c2, scale)
	out.C3 = position
}
