package fractal

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULevelUniformSource is the canonical WGSL definition of the LevelUniform struct.
// Matches LevelUniform layout exactly (48 bytes, std140 aligned).
//
//go:embed assets/level_uniform.wgsl
var GPULevelUniformSource string

// CompactMatrixSize is the byte stride of one CompactMatrix in a level's storage buffer.
const CompactMatrixSize = 48

// CompactMatrix is the per-instance transform written for every part each frame: the three
// rotation columns pre-multiplied by the level scale followed by the translation column.
// There is no homogeneous row. The vertex shader reads it as 12 consecutive f32 values.
// Size: 48 bytes, tightly packed.
type CompactMatrix struct {
	C0 [3]float32 // offset  0: rotated X axis * scale
	C1 [3]float32 // offset 12: rotated Y axis * scale
	C2 [3]float32 // offset 24: rotated Z axis * scale
	C3 [3]float32 // offset 36: world position
}

// Size returns the size of the CompactMatrix struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (m *CompactMatrix) Size() int {
	return int(unsafe.Sizeof(*m))
}

// TransformPoint applies the matrix to a model-space point.
//
// Parameters:
//   - p: the model-space point
//
// Returns:
//   - [3]float32: the world-space point
func (m *CompactMatrix) TransformPoint(p [3]float32) [3]float32 {
	return [3]float32{
		m.C0[0]*p[0] + m.C1[0]*p[1] + m.C2[0]*p[2] + m.C3[0],
		m.C0[1]*p[0] + m.C1[1]*p[1] + m.C2[1]*p[2] + m.C3[1],
		m.C0[2]*p[0] + m.C1[2]*p[1] + m.C2[2]*p[2] + m.C3[2],
	}
}

// LevelUniform is the per-level uniform consumed by the fractal shaders.
// Matches the WGSL LevelUniform struct layout exactly (see GPULevelUniformSource).
// Size: 48 bytes (three vec4<f32>).
type LevelUniform struct {
	ColorA   [4]float32 // offset  0: first gradient color of the level
	ColorB   [4]float32 // offset 16: second gradient color of the level
	Sequence [4]float32 // offset 32: xy pick the instance color blend, zw pick the instance gloss
}

// Size returns the size of the LevelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (u *LevelUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the LevelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (u *LevelUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(u.ColorA[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(u.ColorB[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(u.Sequence[i]))
	}
	return buf
}
