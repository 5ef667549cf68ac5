// Command fractal opens a window showing an animated fractal whose parts are propagated level by
// level on a worker pool and drawn with one instanced call per level.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine"
	"github.com/Carmen-Shannon/oxy-fractal/engine/camera"
	"github.com/Carmen-Shannon/oxy-fractal/engine/config"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
	"github.com/Carmen-Shannon/oxy-fractal/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scene"
	"github.com/Carmen-Shannon/oxy-fractal/engine/window"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath string
	depth      int
	spinMode   string
	sag        bool
	workers    int
	profile    bool
	frames     int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "fractal",
		Short: "Animated level-parallel fractal viewer",
		Long: `Opens a window with a five-way branching fractal.

Controls:
  1-8          set the depth
  U / I        uniform / inherited spin
  G            toggle sag
  Space        pause propagation
  WASD, drag   orbit the camera
  Scroll       zoom
  Esc          quit`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger.SetLogger(logger.NewTextLogger(cfg.Log.Level))
			return runWindowed(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML config file (default ./"+config.DefaultFile+" when present)")
	pf.IntVarP(&f.depth, "depth", "d", fractal.DefaultDepth, fmt.Sprintf("fractal depth, %d to %d", fractal.MinDepth, fractal.MaxDepth))
	pf.StringVar(&f.spinMode, "spin-mode", fractal.SpinUniform.String(), "spin mode: uniform or inherited")
	pf.BoolVar(&f.sag, "sag", false, "enable gravity sag")
	pf.IntVarP(&f.workers, "workers", "w", 0, "scheduler workers (0 = one per CPU minus one)")
	pf.BoolVar(&f.profile, "profile", false, "log frame and step statistics every second")

	bench := &cobra.Command{
		Use:   "bench",
		Short: "Propagate without a window and report step timings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger.SetLogger(logger.NewTextLogger(cfg.Log.Level))
			return runHeadless(cmd, cfg, f.frames)
		},
	}
	bench.Flags().IntVarP(&f.frames, "frames", "n", 600, "number of steps to run")

	initConfig := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}

	root.AddCommand(bench, initConfig)
	return root
}

// loadConfig reads the config file, then lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg := config.Default()
	path := f.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	fs := cmd.Flags()
	if fs.Changed("depth") {
		cfg.Fractal.Depth = f.depth
	}
	if fs.Changed("spin-mode") {
		cfg.Fractal.SpinMode = f.spinMode
	}
	if fs.Changed("sag") {
		cfg.Fractal.Sag = f.sag
	}
	if fs.Changed("workers") {
		cfg.Fractal.Workers = f.workers
	}
	if fs.Changed("profile") {
		cfg.Engine.Profile = f.profile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newHost builds the game object hosting the configured fractal.
func newHost(cfg config.Config) game_object.GameObject {
	f := fractal.NewFractal(cfg.FractalOptions()...)
	return game_object.NewGameObject(
		game_object.WithFractal(f),
		game_object.WithScale(float32(cfg.Fractal.Scale)),
		game_object.WithRotationSpeed([3]float32{0, common.Radians(float32(cfg.Fractal.HostSpin)), 0}),
	)
}

func runWindowed(cfg config.Config) error {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithResizable(cfg.Window.Resizable),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Renderer.PresentMode)),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceFallback),
		renderer.WithClearColor(cfg.Renderer.ClearColorRGBA()),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	// Frame the whole fractal: its bounds reach three root scales from the center.
	scale := float32(cfg.Fractal.Scale)
	orbit := camera.NewOrbitController(
		camera.WithRadius(8*scale),
		camera.WithRadiusBounds(scale, 60*scale),
		camera.WithOrbitSpeed(common.Radians(float32(cfg.Camera.OrbitSpeed))),
		camera.WithZoomSpeed(float32(cfg.Camera.ZoomSpeed)),
	)
	cam := camera.NewCamera(
		camera.WithFov(common.Radians(float32(cfg.Camera.Fov))),
		camera.WithAspect(float32(win.Width())/float32(max(win.Height(), 1))),
		camera.WithClipPlanes(0.01*scale, 200*scale),
		camera.WithController(orbit),
	)

	var sceneOpts []scene.SceneBuilderOption
	if !cfg.Fractal.LeafMesh {
		sceneOpts = append(sceneOpts, scene.WithDefaultLeafMesh(nil, nil))
	}
	sc, err := scene.NewScene("fractal", cam, r, sceneOpts...)
	if err != nil {
		return err
	}
	defer sc.Release()

	host := newHost(cfg)
	if _, err := sc.Add(host); err != nil {
		return err
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(0, sc),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profile),
	)

	ctl := newControls(host.Fractal(), sc, orbit)
	win.SetKeyDownCallback(ctl.KeyDown)
	win.SetKeyUpCallback(ctl.KeyUp)
	win.SetDragCallback(ctl.Drag)
	win.SetScrollCallback(ctl.Scroll)
	eng.SetTickCallback(ctl.Tick)

	logger.Logger().Info("starting", "depth", cfg.Fractal.Depth, "spin", cfg.Fractal.SpinMode, "sag", cfg.Fractal.Sag)
	eng.Run()
	return nil
}

// runHeadless steps a CPU-only fractal at a fixed 60 Hz timestep and prints the timing summary.
func runHeadless(cmd *cobra.Command, cfg config.Config, frames int) error {
	if frames <= 0 {
		return errors.New("frames must be positive")
	}
	host := newHost(cfg)
	f := host.Fractal()
	if err := f.Initialize(nil); err != nil {
		return err
	}
	defer f.Shutdown()

	var report profiler.Report
	p := profiler.NewProfiler(
		profiler.WithInterval(time.Nanosecond),
		profiler.WithReportHandler(func(r profiler.Report) { report = r }),
	)

	const dt = float32(1.0 / 60)
	for range frames {
		host.Advance(dt)
		if err := f.Update(dt, host.Transform()); err != nil {
			return err
		}
		p.ObserveStep(f.Stats())
	}
	p.Tick()

	tree := f.Tree()
	cmd.Printf("depth %d, %d parts, %d steps\n", tree.Depth(), tree.PartCount(), report.Steps)
	cmd.Printf("step avg %s, max %s, slowest level %d\n", report.AvgStep, report.MaxStep, report.SlowestLevel)
	center, extents := f.Bounds()
	cmd.Printf("bounds center %v extents %v\n", center, extents)
	return nil
}
