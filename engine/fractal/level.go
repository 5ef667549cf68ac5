package fractal

import "github.com/Carmen-Shannon/oxy-fractal/common"

// Part is the mutable state of one node in the tree. Direction and Rotation are fixed by the
// part's role when the tree is built. SpinAngle, WorldRotation and WorldPosition are rewritten
// every step.
type Part struct {
	Direction     [3]float32
	Rotation      common.Quat
	SpinAngle     float32
	WorldRotation common.Quat
	WorldPosition [3]float32
}

// Level holds every part of one tree depth together with the matrices the render feed uploads.
// Parts and Matrices are allocated once when the tree is built and reused for every step.
type Level struct {
	Index    int
	Parts    []Part
	Matrices []CompactMatrix
}

func newLevel(index int) Level {
	n := LevelSize(index)
	return Level{
		Index:    index,
		Parts:    make([]Part, n),
		Matrices: make([]CompactMatrix, n),
	}
}

// Len returns the number of parts in the level (5^Index).
func (l *Level) Len() int {
	return len(l.Parts)
}

// ScaleFactor returns the uniform scale of the level relative to the root, 0.5^Index.
func (l *Level) ScaleFactor() float32 {
	return 1 / float32(uint32(1)<<uint(l.Index))
}

// MatrixBytes returns a byte view over the level's matrices for the GPU upload. The view shares
// memory with Matrices and stays valid for the lifetime of the level.
func (l *Level) MatrixBytes() []byte {
	return common.SliceToBytes(l.Matrices)
}

// ByteSize returns the exact size of the level's matrix storage in bytes.
func (l *Level) ByteSize() uint64 {
	return uint64(len(l.Matrices)) * CompactMatrixSize
}
