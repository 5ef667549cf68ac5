package fractal

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/bind_group_provider"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Config is the full configuration of a Fractal. It is copied on every Reconfigure, so the
// running fractal never observes a partially applied change.
type Config struct {
	Depth     int
	SpinMode  SpinMode
	SpinRate  float32
	Sag       bool
	MaxSag    float32
	Workers   int
	BatchSize int
	Seed      int64
	Palette   Palette

	// Seeds overrides the noise seed source when set.
	Seeds SeedSource

	Mesh         Mesh
	Material     Material
	LeafMesh     Mesh
	LeafMaterial Material

	MaxBufferBytes uint64

	LevelObserver func(level int)
	PartObserver  func(level, index int)
}

// fractal is the implementation of the Fractal interface.
type fractal struct {
	mu *sync.Mutex

	id     string
	cfg    Config
	active bool

	tree      *Tree
	scheduler Scheduler
	feed      *renderFeed
	renderer  Renderer

	root common.Transform
}

// Fractal is one animated five-way branching structure. It owns its tree, the scheduler that
// propagates transforms through it and, when initialized with a renderer, one GPU bind group per
// level.
//
// Lifecycle:
//  1. NewFractal(options...) records the configuration; nothing is allocated
//  2. Initialize(r) builds the tree and the level buffers and activates the fractal
//  3. Update(dt, root) runs one propagation step and uploads the matrices; Draw(r, camera) draws
//  4. Reconfigure(options...) rebuilds everything with the new configuration
//  5. Shutdown() releases the level buffers
type Fractal interface {
	// ID returns the unique identifier of the fractal. It is used to label GPU objects.
	//
	// Returns:
	//   - string: the identifier
	ID() string

	// Active reports whether the fractal is initialized.
	//
	// Returns:
	//   - bool: true between a successful Initialize and Shutdown
	Active() bool

	// Depth returns the configured depth.
	//
	// Returns:
	//   - int: the number of levels
	Depth() int

	// Config returns a copy of the current configuration.
	//
	// Returns:
	//   - Config: the configuration
	Config() Config

	// Tree returns the live tree, or nil while inactive.
	//
	// Returns:
	//   - *Tree: the tree or nil
	Tree() *Tree

	// Stats returns the timing of the last step. It is empty while inactive.
	//
	// Returns:
	//   - Stats: the step timing
	Stats() Stats

	// Bounds returns the bounding box of the fractal at the root transform of the last Update.
	//
	// Returns:
	//   - center: the box center
	//   - extents: the box half-size per axis
	Bounds() (center, extents [3]float32)

	// Initialize builds the tree and scheduler and, when r is not nil, the level buffers. It does
	// nothing if the fractal is already active. A nil renderer runs the fractal on the CPU only.
	//
	// Parameters:
	//   - r: the renderer to allocate level buffers with, or nil
	//
	// Returns:
	//   - error: ErrInvalidDepth, ErrNoMesh or ErrResourceExhausted; the fractal stays inactive
	Initialize(r Renderer) error

	// Shutdown releases the level buffers and drops the tree. It does nothing while inactive.
	Shutdown()

	// Reconfigure applies the options. An active fractal is shut down and initialized again with
	// the renderer it was last initialized with.
	//
	// Parameters:
	//   - options: the changes to apply
	//
	// Returns:
	//   - error: the rebuild error; the fractal is left inactive when it is not nil
	Reconfigure(options ...FractalBuilderOption) error

	// Update runs one propagation step and queues the level uploads.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last update
	//   - root: the world transform of the owning object
	//
	// Returns:
	//   - error: ErrInactive when not initialized, or ErrStepInFlight
	Update(dt float32, root common.Transform) error

	// Draw issues one instanced draw per level. It does nothing while inactive or CPU-only.
	//
	// Parameters:
	//   - r: the renderer recording the frame
	//   - camera: the camera bind group, bound to group 0
	//
	// Returns:
	//   - error: the first draw error
	Draw(r Renderer, camera bind_group_provider.BindGroupProvider) error
}

var _ Fractal = &fractal{}

// NewFractal creates an inactive Fractal.
//
// Parameters:
//   - options: variadic list of FractalBuilderOption functions to configure the fractal
//
// Returns:
//   - Fractal: the fractal, ready for Initialize
func NewFractal(options ...FractalBuilderOption) Fractal {
	f := &fractal{
		mu: &sync.Mutex{},
		id: uuid.NewString(),
		cfg: Config{
			Depth:          DefaultDepth,
			SpinRate:       DefaultSpinRate,
			MaxSag:         DefaultMaxSag,
			Palette:        DefaultPalette(),
			MaxBufferBytes: DefaultMaxBufferBytes,
		},
		root: common.IdentityTransform(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *fractal) ID() string {
	return f.id
}

func (f *fractal) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fractal) Depth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Depth
}

func (f *fractal) Config() Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fractal) Tree() *Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree
}

func (f *fractal) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduler == nil {
		return Stats{}
	}
	return f.scheduler.Stats()
}

func (f *fractal) Bounds() (center, extents [3]float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Bounds(f.root)
}

func (f *fractal) Initialize(r Renderer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialize(r)
}

func (f *fractal) initialize(r Renderer) error {
	if f.active {
		return nil
	}

	tree, err := BuildTree(f.cfg.Depth)
	if err != nil {
		return err
	}

	var feed *renderFeed
	if r != nil {
		seeds := f.cfg.Seeds
		if seeds == nil {
			seeds = NewNoiseSeedSource(f.cfg.Seed)
		}
		feed = newRenderFeed(tree, renderFeedConfig{
			label:          "Fractal " + f.id,
			palette:        f.cfg.Palette,
			seeds:          seeds,
			mesh:           f.cfg.Mesh,
			material:       f.cfg.Material,
			leafMesh:       f.cfg.LeafMesh,
			leafMaterial:   f.cfg.LeafMaterial,
			maxBufferBytes: f.cfg.MaxBufferBytes,
		})
		if err := feed.init(r); err != nil {
			logger.Logger().Error("fractal activation failed", "fractal", f.id, "depth", f.cfg.Depth, "err", err)
			return err
		}
	}

	f.tree = tree
	f.feed = feed
	f.renderer = r
	f.scheduler = NewScheduler(tree, SchedulerConfig{
		Workers:       f.cfg.Workers,
		BatchSize:     f.cfg.BatchSize,
		SpinMode:      f.cfg.SpinMode,
		SpinRate:      f.cfg.SpinRate,
		Sag:           f.cfg.Sag,
		MaxSag:        f.cfg.MaxSag,
		LevelObserver: f.cfg.LevelObserver,
		PartObserver:  f.cfg.PartObserver,
	})
	f.active = true

	logger.Logger().Info("fractal active",
		"fractal", f.id,
		"depth", f.cfg.Depth,
		"parts", humanize.Comma(int64(tree.PartCount())),
		"bytes", humanize.IBytes(tree.ByteSize()),
		"workers", f.scheduler.Workers(),
		"spin", f.cfg.SpinMode.String(),
		"gpu", r != nil,
	)
	return nil
}

func (f *fractal) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown()
}

func (f *fractal) shutdown() {
	if !f.active {
		return
	}
	if f.feed != nil {
		f.feed.release()
		f.feed = nil
	}
	if f.scheduler != nil {
		f.scheduler.Close()
		f.scheduler = nil
	}
	f.tree = nil
	f.active = false
	logger.Logger().Info("fractal shut down", "fractal", f.id)
}

func (f *fractal) Reconfigure(options ...FractalBuilderOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, opt := range options {
		opt(f)
	}
	if !f.active {
		return nil
	}

	r := f.renderer
	f.shutdown()
	if err := f.initialize(r); err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}
	return nil
}

func (f *fractal) Update(dt float32, root common.Transform) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.active {
		return ErrInactive
	}
	if err := f.scheduler.Step(dt, root); err != nil {
		return err
	}
	f.root = root
	if f.feed != nil {
		f.feed.upload(f.renderer)
	}
	return nil
}

func (f *fractal) Draw(r Renderer, camera bind_group_provider.BindGroupProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.active || f.feed == nil {
		return nil
	}
	return f.feed.draw(r, camera)
}
