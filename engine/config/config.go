// Package config loads the viewer's TOML configuration and maps it onto engine and fractal options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the config file name looked up when no path is given.
const DefaultFile = "fractal.toml"

// Config is the complete viewer configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   EngineConfig   `toml:"engine"`
	Camera   CameraConfig   `toml:"camera"`
	Fractal  FractalConfig  `toml:"fractal"`
	Log      LogConfig      `toml:"log"`
}

// WindowConfig configures the window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// RendererConfig configures the GPU renderer.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `toml:"msaa"`
	// ForceFallback requests a software adapter.
	ForceFallback bool `toml:"force_fallback"`
	// ClearColor is a hex color.
	ClearColor string `toml:"clear_color"`
}

// EngineConfig configures the engine loops.
type EngineConfig struct {
	TickRate   float64 `toml:"tick_rate"`
	FrameLimit float64 `toml:"frame_limit"`
	Profile    bool    `toml:"profile"`
}

// CameraConfig configures the orbit camera.
type CameraConfig struct {
	// Fov is the vertical field of view in degrees.
	Fov float64 `toml:"fov"`
	// OrbitSpeed is the keyboard orbit speed in degrees per second.
	OrbitSpeed float64 `toml:"orbit_speed"`
	// ZoomSpeed scales scroll wheel zoom.
	ZoomSpeed float64 `toml:"zoom_speed"`
}

// FractalConfig configures the fractal. Angles are in degrees.
type FractalConfig struct {
	Depth     int     `toml:"depth"`
	SpinMode  string  `toml:"spin_mode"`
	SpinRate  float64 `toml:"spin_rate"`
	Sag       bool    `toml:"sag"`
	MaxSag    float64 `toml:"max_sag"`
	Workers   int     `toml:"workers"`
	BatchSize int     `toml:"batch_size"`
	Seed      int64   `toml:"seed"`

	// Scale is the host scale of the root part.
	Scale float64 `toml:"scale"`
	// HostSpin is the host's rotation speed about the world Y axis.
	HostSpin float64 `toml:"host_spin"`

	// LeafMesh draws the deepest level with the leaf mesh and pipeline.
	LeafMesh       bool   `toml:"leaf_mesh"`
	MaxBufferBytes uint64 `toml:"max_buffer_bytes"`

	Colors ColorConfig `toml:"colors"`
}

// ColorConfig holds the gradient endpoints as hex colors.
type ColorConfig struct {
	InnerAFrom string `toml:"inner_a_from"`
	InnerATo   string `toml:"inner_a_to"`
	InnerBFrom string `toml:"inner_b_from"`
	InnerBTo   string `toml:"inner_b_to"`
	LeafA      string `toml:"leaf_a"`
	LeafB      string `toml:"leaf_b"`
}

// LogConfig configures the engine logger.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	p := fractal.DefaultPalette()
	return Config{
		Window: WindowConfig{Title: "oxy-fractal", Width: 1280, Height: 720, Resizable: true},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        4,
			ClearColor:  "#1a1a1f",
		},
		Engine: EngineConfig{TickRate: 60},
		Camera: CameraConfig{Fov: 45, OrbitSpeed: 86, ZoomSpeed: 0.5},
		Fractal: FractalConfig{
			Depth:          fractal.DefaultDepth,
			SpinMode:       fractal.SpinUniform.String(),
			SpinRate:       float64(common.Degrees(fractal.DefaultSpinRate)),
			MaxSag:         float64(common.Degrees(fractal.DefaultMaxSag)),
			Scale:          1,
			LeafMesh:       true,
			MaxBufferBytes: fractal.DefaultMaxBufferBytes,
			Colors: ColorConfig{
				InnerAFrom: p.GradientA.From.Hex(),
				InnerATo:   p.GradientA.To.Hex(),
				InnerBFrom: p.GradientB.From.Hex(),
				InnerBTo:   p.GradientB.To.Hex(),
				LeafA:      p.LeafA.Hex(),
				LeafB:      p.LeafB.Hex(),
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML file over the defaults. Keys the file omits keep their default values and
// unknown keys are rejected.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	logger.Logger().Debug("config loaded", "path", path)
	return cfg, nil
}

// Parse decodes TOML bytes over the defaults and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown config keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
//
// Parameters:
//   - path: the destination file
//
// Returns:
//   - error: an error if encoding or writing fails
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks every field that has a restricted range.
//
// Returns:
//   - error: the first violation found, wrapping fractal.ErrInvalidDepth for a depth outside 1..8
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		return fmt.Errorf("msaa must be 1 or 4, got %d", c.Renderer.MSAA)
	}
	if _, err := colorful.Hex(c.Renderer.ClearColor); err != nil {
		return fmt.Errorf("clear color %q: %w", c.Renderer.ClearColor, err)
	}

	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("camera fov %g must be in (0, 180)", c.Camera.Fov)
	}
	if c.Camera.OrbitSpeed < 0 || c.Camera.ZoomSpeed < 0 {
		return fmt.Errorf("camera speeds must not be negative")
	}

	f := c.Fractal
	if f.Depth < fractal.MinDepth || f.Depth > fractal.MaxDepth {
		return fmt.Errorf("%w: %d not in [%d, %d]", fractal.ErrInvalidDepth, f.Depth, fractal.MinDepth, fractal.MaxDepth)
	}
	if _, err := fractal.ParseSpinMode(f.SpinMode); err != nil {
		return err
	}
	if f.Workers < 0 || f.BatchSize < 0 {
		return fmt.Errorf("workers and batch size must not be negative")
	}
	if f.Scale <= 0 {
		return fmt.Errorf("scale %g must be positive", f.Scale)
	}
	if _, err := f.Palette(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Palette builds the fractal palette from the configured colors.
//
// Returns:
//   - fractal.Palette: the palette
//   - error: an error naming the first color that is not a valid hex string
func (f FractalConfig) Palette() (fractal.Palette, error) {
	a, err := fractal.NewGradient(f.Colors.InnerAFrom, f.Colors.InnerATo)
	if err != nil {
		return fractal.Palette{}, fmt.Errorf("colors.inner_a: %w", err)
	}
	b, err := fractal.NewGradient(f.Colors.InnerBFrom, f.Colors.InnerBTo)
	if err != nil {
		return fractal.Palette{}, fmt.Errorf("colors.inner_b: %w", err)
	}
	leaf, err := fractal.NewGradient(f.Colors.LeafA, f.Colors.LeafB)
	if err != nil {
		return fractal.Palette{}, fmt.Errorf("colors.leaf: %w", err)
	}
	return fractal.Palette{GradientA: a, GradientB: b, LeafA: leaf.From, LeafB: leaf.To}, nil
}

// FractalOptions maps the fractal section onto builder options. The config must be valid.
//
// Returns:
//   - []fractal.FractalBuilderOption: options for fractal.NewFractal or Fractal.Reconfigure
func (c Config) FractalOptions() []fractal.FractalBuilderOption {
	f := c.Fractal
	mode, _ := fractal.ParseSpinMode(f.SpinMode)
	palette, _ := f.Palette()
	return []fractal.FractalBuilderOption{
		fractal.WithDepth(f.Depth),
		fractal.WithSpinMode(mode),
		fractal.WithSpinRate(common.Radians(float32(f.SpinRate))),
		fractal.WithSag(f.Sag, common.Radians(float32(f.MaxSag))),
		fractal.WithWorkers(f.Workers),
		fractal.WithBatchSize(f.BatchSize),
		fractal.WithSeed(f.Seed),
		fractal.WithPalette(palette),
		fractal.WithMaxBufferBytes(f.MaxBufferBytes),
	}
}

// ClearColorRGBA returns the clear color components in [0, 1]. The config must be valid.
func (r RendererConfig) ClearColorRGBA() [4]float64 {
	c, _ := colorful.Hex(r.ClearColor)
	return [4]float64{c.R, c.G, c.B, 1}
}
