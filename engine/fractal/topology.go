package fractal

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/chewxy/math32"
)

const (
	// MinDepth is the smallest supported tree depth (the root alone).
	MinDepth = 1

	// MaxDepth is the largest supported tree depth. Level 7 holds 78125 parts.
	MaxDepth = 8

	// DefaultDepth is the depth used when none is configured.
	DefaultDepth = 4

	// Branching is the number of children of every non-leaf part.
	Branching = 5
)

// Role identifies which of the five child slots a part occupies under its parent.
type Role int

const (
	RoleUp Role = iota
	RoleRight
	RoleLeft
	RoleForward
	RoleBack
)

type roleEntry struct {
	name      string
	direction [3]float32
	rotation  common.Quat
}

// roles is indexed by Role. Children sit 1.5 level scales out along direction and are turned so
// their local up axis points along it.
var roles = [Branching]roleEntry{
	RoleUp:      {"up", [3]float32{0, 1, 0}, common.QuatIdentity()},
	RoleRight:   {"right", [3]float32{1, 0, 0}, common.QuatRotateZ(-0.5 * math32.Pi)},
	RoleLeft:    {"left", [3]float32{-1, 0, 0}, common.QuatRotateZ(0.5 * math32.Pi)},
	RoleForward: {"forward", [3]float32{0, 0, 1}, common.QuatRotateX(0.5 * math32.Pi)},
	RoleBack:    {"back", [3]float32{0, 0, -1}, common.QuatRotateX(-0.5 * math32.Pi)},
}

// Direction returns the unit offset direction of the role in its parent's frame.
func (r Role) Direction() [3]float32 {
	return roles[r].direction
}

// Rotation returns the local rotation of the role relative to its parent.
func (r Role) Rotation() common.Quat {
	return roles[r].rotation
}

func (r Role) String() string {
	if r < 0 || int(r) >= Branching {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roles[r].name
}

// RoleOf returns the role of the part at index i within its level.
func RoleOf(i int) Role {
	return Role(i % Branching)
}

// ParentIndex returns the index, in the previous level, of the parent of the part at index i.
func ParentIndex(i int) int {
	return i / Branching
}

// LevelSize returns the number of parts on level L, 5^L.
func LevelSize(level int) int {
	n := 1
	for range level {
		n *= Branching
	}
	return n
}

// Tree is the full set of levels for one fractal. Level 0 holds the root.
type Tree struct {
	levels []Level
}

// BuildTree allocates every level for the given depth and assigns each part the direction and
// rotation of its role. The result is the same for equal depths.
//
// Parameters:
//   - depth: the number of levels, in [MinDepth, MaxDepth]
//
// Returns:
//   - *Tree: the tree with zeroed spin and world state
//   - error: ErrInvalidDepth wrapped with the requested depth
func BuildTree(depth int) (*Tree, error) {
	if depth < MinDepth || depth > MaxDepth {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidDepth, depth, MinDepth, MaxDepth)
	}

	t := &Tree{levels: make([]Level, depth)}
	for L := range depth {
		t.levels[L] = newLevel(L)
		parts := t.levels[L].Parts
		if L == 0 {
			parts[0] = Part{Rotation: common.QuatIdentity(), WorldRotation: common.QuatIdentity()}
			continue
		}
		for i := range parts {
			role := RoleOf(i)
			parts[i] = Part{
				Direction:     role.Direction(),
				Rotation:      role.Rotation(),
				WorldRotation: common.QuatIdentity(),
			}
		}
	}
	return t, nil
}

// Depth returns the number of levels.
func (t *Tree) Depth() int {
	return len(t.levels)
}

// Level returns level L. It panics when L is out of range.
func (t *Tree) Level(level int) *Level {
	return &t.levels[level]
}

// PartCount returns the total number of parts across all levels.
func (t *Tree) PartCount() int {
	n := 0
	for i := range t.levels {
		n += t.levels[i].Len()
	}
	return n
}

// ByteSize returns the total matrix storage of all levels in bytes.
func (t *Tree) ByteSize() uint64 {
	var n uint64
	for i := range t.levels {
		n += t.levels[i].ByteSize()
	}
	return n
}
