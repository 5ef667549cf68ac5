package fractal

// FractalBuilderOption is a functional option used to configure a Fractal on creation or on
// Reconfigure.
type FractalBuilderOption func(*fractal)

// WithID overrides the generated identifier.
//
// Parameters:
//   - id: the identifier
//
// Returns:
//   - FractalBuilderOption: a function that sets the identifier
func WithID(id string) FractalBuilderOption {
	return func(f *fractal) {
		f.id = id
	}
}

// WithDepth sets the number of levels. The value is validated on Initialize.
//
// Parameters:
//   - depth: the number of levels, in [MinDepth, MaxDepth]
//
// Returns:
//   - FractalBuilderOption: a function that sets the depth
func WithDepth(depth int) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Depth = depth
	}
}

// WithSpinMode sets how child spin advances.
func WithSpinMode(mode SpinMode) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.SpinMode = mode
	}
}

// WithSpinRate sets the spin speed in radians per second.
func WithSpinRate(radiansPerSecond float32) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.SpinRate = radiansPerSecond
	}
}

// WithSag enables or disables the gravity sag correction.
//
// Parameters:
//   - enabled: whether parts sag
//   - maxAngle: the sag in radians of a fully horizontal part; zero keeps the current angle
//
// Returns:
//   - FractalBuilderOption: a function that sets the sag
func WithSag(enabled bool, maxAngle float32) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Sag = enabled
		if maxAngle != 0 {
			f.cfg.MaxSag = maxAngle
		}
	}
}

// WithWorkers sets the number of scheduler workers. 1 runs every level on the calling goroutine.
func WithWorkers(n int) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Workers = n
	}
}

// WithBatchSize sets how many parts one scheduler task updates.
func WithBatchSize(n int) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.BatchSize = n
	}
}

// WithSeed sets the seed of the per-level sequence noise.
func WithSeed(seed int64) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Seed = seed
	}
}

// WithSeedSource replaces the noise seed source.
func WithSeedSource(src SeedSource) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Seeds = src
	}
}

// WithPalette sets the level colors.
func WithPalette(p Palette) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Palette = p
	}
}

// WithMesh sets the mesh and material drawn for every level.
//
// Parameters:
//   - mesh: the mesh with initialized buffers
//   - material: the material naming the pipeline
//
// Returns:
//   - FractalBuilderOption: a function that sets the mesh and material
func WithMesh(mesh Mesh, material Material) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.Mesh = mesh
		f.cfg.Material = material
	}
}

// WithLeafMesh sets a separate mesh and material for the deepest level.
//
// Parameters:
//   - mesh: the leaf mesh with initialized buffers
//   - material: the leaf material
//
// Returns:
//   - FractalBuilderOption: a function that sets the leaf mesh and material
func WithLeafMesh(mesh Mesh, material Material) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.LeafMesh = mesh
		f.cfg.LeafMaterial = material
	}
}

// WithMaxBufferBytes caps the GPU memory the level buffers may use.
func WithMaxBufferBytes(n uint64) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.MaxBufferBytes = n
	}
}

// WithLevelObserver registers a callback run after every level of every step.
func WithLevelObserver(fn func(level int)) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.LevelObserver = fn
	}
}

// WithPartObserver registers a callback run after every part is written. It is called from
// worker goroutines.
func WithPartObserver(fn func(level, index int)) FractalBuilderOption {
	return func(f *fractal) {
		f.cfg.PartObserver = fn
	}
}
