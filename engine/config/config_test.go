package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, fractal.DefaultDepth, cfg.Fractal.Depth)
	assert.Equal(t, "uniform", cfg.Fractal.SpinMode)
	assert.InDelta(t, 22.5, cfg.Fractal.SpinRate, 1e-4)
	assert.False(t, cfg.Fractal.Sag)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[fractal]
depth = 6
spin_mode = "inherited"
sag = true
max_sag = 30.0

[fractal.colors]
leaf_a = "#ff0000"

[camera]
fov = 60.0

[window]
resizable = false

[log]
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Fractal.Depth)
	assert.Equal(t, "inherited", cfg.Fractal.SpinMode)
	assert.True(t, cfg.Fractal.Sag)
	assert.Equal(t, 30.0, cfg.Fractal.MaxSag)
	assert.Equal(t, "#ff0000", cfg.Fractal.Colors.LeafA)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60.0, cfg.Camera.Fov)
	assert.False(t, cfg.Window.Resizable)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, Default().Camera.ZoomSpeed, cfg.Camera.ZoomSpeed)
	assert.Equal(t, Default().Fractal.Colors.LeafB, cfg.Fractal.Colors.LeafB)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
[fractal]
depht = 3
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depht")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		is     error
	}{
		{name: "depth too low", mutate: func(c *Config) { c.Fractal.Depth = 0 }, is: fractal.ErrInvalidDepth},
		{name: "depth too high", mutate: func(c *Config) { c.Fractal.Depth = 9 }, is: fractal.ErrInvalidDepth},
		{name: "spin mode", mutate: func(c *Config) { c.Fractal.SpinMode = "wobbly" }},
		{name: "color", mutate: func(c *Config) { c.Fractal.Colors.InnerATo = "green" }},
		{name: "clear color", mutate: func(c *Config) { c.Renderer.ClearColor = "#12" }},
		{name: "present mode", mutate: func(c *Config) { c.Renderer.PresentMode = "mailbox" }},
		{name: "msaa", mutate: func(c *Config) { c.Renderer.MSAA = 8 }},
		{name: "window", mutate: func(c *Config) { c.Window.Width = 0 }},
		{name: "workers", mutate: func(c *Config) { c.Fractal.Workers = -1 }},
		{name: "scale", mutate: func(c *Config) { c.Fractal.Scale = 0 }},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		{name: "fov", mutate: func(c *Config) { c.Camera.Fov = 180 }},
		{name: "orbit speed", mutate: func(c *Config) { c.Camera.OrbitSpeed = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	cfg := Default()
	cfg.Fractal.Depth = 7
	cfg.Fractal.Seed = 42
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFractalOptionsApply(t *testing.T) {
	cfg := Default()
	cfg.Fractal.Depth = 3
	cfg.Fractal.SpinMode = "inherited"
	cfg.Fractal.Sag = true
	cfg.Fractal.MaxSag = 90
	cfg.Fractal.Workers = 2

	f := fractal.NewFractal(cfg.FractalOptions()...)
	got := f.Config()

	assert.Equal(t, 3, got.Depth)
	assert.Equal(t, fractal.SpinInherited, got.SpinMode)
	assert.True(t, got.Sag)
	assert.InDelta(t, 1.5707963, got.MaxSag, 1e-5)
	assert.Equal(t, 2, got.Workers)
}

func TestClearColorRGBA(t *testing.T) {
	r := RendererConfig{ClearColor: "#ff0000"}
	assert.Equal(t, [4]float64{1, 0, 0, 1}, r.ClearColorRGBA())
}
