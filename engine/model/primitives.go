package model

import "github.com/chewxy/math32"

// NewCube builds a cube of the given edge length centered on the origin with flat normals.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Model: the cube, named "cube"
func NewCube(size float32) Model {
	h := size / 2
	faces := [6]struct {
		normal, u, v [3]float32
	}{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p [3]float32
			for i := range p {
				p[i] = (f.normal[i] + f.u[i]*c[0] + f.v[i]*c[1]) * h
			}
			vertices = append(vertices, GPUVertex{Position: p, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewModel(WithName("cube"), WithMesh(vertices, indices))
}

// NewSphere builds a UV sphere centered on the origin.
//
// Parameters:
//   - radius: the sphere radius
//   - segments: the number of slices around the Y axis, at least 3
//   - rings: the number of stacks from pole to pole, at least 2
//
// Returns:
//   - Model: the sphere, named "sphere"
func NewSphere(radius float32, segments, rings int) Model {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]GPUVertex, 0, (segments+1)*(rings+1))
	for r := 0; r <= rings; r++ {
		sinPhi, cosPhi := math32.Sincos(math32.Pi * float32(r) / float32(rings))
		for s := 0; s <= segments; s++ {
			sinTheta, cosTheta := math32.Sincos(2 * math32.Pi * float32(s) / float32(segments))
			n := [3]float32{sinPhi * sinTheta, cosPhi, sinPhi * cosTheta}
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
			})
		}
	}

	stride := uint32(segments + 1)
	indices := make([]uint32, 0, segments*rings*6)
	for r := range uint32(rings) {
		for s := range uint32(segments) {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return NewModel(WithName("sphere"), WithMesh(vertices, indices))
}
