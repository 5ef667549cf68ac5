package fractal

import opensimplex "github.com/ojrac/opensimplex-go"

// SeedSource supplies the per-level sequence 4-tuple the shaders use to vary color and gloss
// between instances of the same level.
type SeedSource interface {
	// LevelSeed returns four values in [0, 1] for the level.
	LevelSeed(level int) [4]float32
}

// noiseSeedSource samples normalized OpenSimplex noise along a row per level.
type noiseSeedSource struct {
	noise opensimplex.Noise
}

// NewNoiseSeedSource returns a SeedSource that yields the same tuples for the same seed.
//
// Parameters:
//   - seed: the noise seed
//
// Returns:
//   - SeedSource: the deterministic source
func NewNoiseSeedSource(seed int64) SeedSource {
	return &noiseSeedSource{noise: opensimplex.NewNormalized(seed)}
}

func (n *noiseSeedSource) LevelSeed(level int) [4]float32 {
	var out [4]float32
	for k := range out {
		// offsets keep the samples off the lattice, where simplex noise is exactly 0.5
		out[k] = float32(n.noise.Eval2(float64(level)*1.37+0.21, float64(k)*2.71+0.43))
	}
	return out
}
