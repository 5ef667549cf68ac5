package fractal

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Gradient is a two-stop color ramp blended in CIE Lab space.
type Gradient struct {
	From colorful.Color
	To   colorful.Color
}

// NewGradient parses two hex colors ("#rrggbb") into a Gradient.
//
// Parameters:
//   - from: the color at t = 0
//   - to: the color at t = 1
//
// Returns:
//   - Gradient: the ramp
//   - error: an error if either color is not a valid hex string
func NewGradient(from, to string) (Gradient, error) {
	a, err := colorful.Hex(from)
	if err != nil {
		return Gradient{}, fmt.Errorf("gradient start %q: %w", from, err)
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return Gradient{}, fmt.Errorf("gradient end %q: %w", to, err)
	}
	return Gradient{From: a, To: b}, nil
}

// At returns the opaque RGBA color at t in [0, 1].
func (g Gradient) At(t float64) [4]float32 {
	return toRGBA(g.From.BlendLab(g.To, min(max(t, 0), 1)))
}

// Palette assigns two colors to every level. Inner levels sample GradientA and GradientB at
// level/(depth-1), and the leaf level uses its own pair instead of the gradient end.
type Palette struct {
	GradientA Gradient
	GradientB Gradient
	LeafA     colorful.Color
	LeafB     colorful.Color
}

// DefaultPalette returns the palette used when none is configured: a bark-to-moss ramp with
// pale green leaves.
func DefaultPalette() Palette {
	return Palette{
		GradientA: Gradient{From: mustHex("#3d2b1f"), To: mustHex("#6b8e23")},
		GradientB: Gradient{From: mustHex("#5c4033"), To: mustHex("#9acd32")},
		LeafA:     mustHex("#98fb98"),
		LeafB:     mustHex("#2e8b57"),
	}
}

// LevelColors returns the two colors of level L in a tree of the given depth.
//
// Parameters:
//   - level: the level index
//   - depth: the tree depth
//
// Returns:
//   - a, b: the level's colors
func (p Palette) LevelColors(level, depth int) (a, b [4]float32) {
	if level == depth-1 {
		return toRGBA(p.LeafA), toRGBA(p.LeafB)
	}
	// level < depth-1 here, so depth-1 is never zero
	t := float64(level) / float64(depth-1)
	return p.GradientA.At(t), p.GradientB.At(t)
}

func toRGBA(c colorful.Color) [4]float32 {
	c = c.Clamped()
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
