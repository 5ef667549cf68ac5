package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialWithPipeline(t *testing.T) {
	p := pipeline.NewPipeline("fractal")
	m := NewMaterial(WithName("bark"), WithPipeline(p))

	assert.Equal(t, "bark", m.Name())
	assert.Equal(t, "fractal", m.PipelineKey())
	assert.Same(t, p, m.Pipeline())
}

func TestNewMaterialByKey(t *testing.T) {
	m := NewMaterial(WithPipelineKey("fractal_leaf"))

	assert.Equal(t, "fractal_leaf", m.Name(), "name falls back to the key")
	assert.Nil(t, m.Pipeline())
}
