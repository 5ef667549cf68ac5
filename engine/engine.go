package engine

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
	"github.com/Carmen-Shannon/oxy-fractal/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scene"
	"github.com/Carmen-Shannon/oxy-fractal/engine/window"
)

// FrameRenderer is the frame lifecycle part of renderer.Renderer the engine drives.
type FrameRenderer interface {
	BeginFrame() error
	EndFrame()
	Present()
	Resize(width, height int)
}

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer FrameRenderer

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenesMu  sync.RWMutex
	scenes    map[int]scene.Scene
	sceneKeys []int

	renderFrameLimit time.Duration
}

// Engine orchestrates the fixed-rate tick loop, the render loop that steps and draws every
// scene, and the window message loop.
type Engine interface {
	// Window returns the window the engine presents to, or nil when running headless.
	Window() window.Window

	// EnableProfiler enables periodic performance reports.
	EnableProfiler()

	// DisableProfiler disables periodic performance reports.
	DisableProfiler()

	// SetTickRate sets the tick callback rate in ticks per second. Values <= 0 select 60.
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, typically input handling.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the render loop in frames per second. 0 uncaps it.
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key. Scenes are prepared and drawn in
	// ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// Scene returns the scene registered at the given key, or nil.
	Scene(key int) scene.Scene

	// Frame runs one complete frame: every scene is prepared, then drawn inside a single render
	// pass that is presented. The render loop calls it; headless hosts may call it directly.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous frame
	//
	// Returns:
	//   - error: the joined scene errors, or the renderer's frame acquisition error
	Frame(dt float32) error

	// Run starts the tick and render loops and runs the window message loop until the window
	// closes. The loops are stopped before Run returns.
	Run()

	// Quit signals the engine loops to stop. Safe to call more than once.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			if height <= 0 {
				return
			}
			e.scenesMu.RLock()
			defer e.scenesMu.RUnlock()
			for _, s := range e.scenes {
				s.Camera().SetAspect(float32(width) / float32(height))
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	e.running.Store(false)
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the tick and render goroutines.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop until the quit channel closes, picking up rate
// changes from tickRateChannel.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop until the quit channel closes. A panic inside a frame is
// logged and stops the engine instead of crashing the process.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Logger().Error("render loop recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		// A fractal left inactive by a failed reconfigure reports ErrInactive every frame.
		if err := e.Frame(dt); err != nil && !errors.Is(err, fractal.ErrInactive) {
			logger.Logger().Warn("frame failed", "err", err)
		}
		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(lastRender); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) Frame(dt float32) error {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()

	var errs []error
	for _, k := range e.sceneKeys {
		if err := e.scenes[k].PrepareFrame(dt); err != nil {
			errs = append(errs, err)
		}
	}

	if e.profilingEnabled.Load() {
		e.observe()
	}

	if e.renderer != nil {
		if err := e.renderer.BeginFrame(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		for _, k := range e.sceneKeys {
			if err := e.scenes[k].DrawCalls(); err != nil {
				errs = append(errs, err)
			}
		}
		e.renderer.EndFrame()
		e.renderer.Present()
	}

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return errors.Join(errs...)
}

// observe feeds the stats of every active fractal to the profiler. Paused scenes are skipped
// so their stale stats are not counted twice. Caller must hold scenesMu.
func (e *engine) observe() {
	for _, k := range e.sceneKeys {
		s := e.scenes[k]
		if s.Paused() {
			continue
		}
		for _, obj := range s.Objects() {
			f := obj.Fractal()
			if f == nil || !f.Active() || !obj.Enabled() {
				continue
			}
			e.profiler.ObserveStep(f.Stats())
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate. A running tick loop picks the change up immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending update so the latest rate wins.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.addScene(key, s)
}

func (e *engine) addScene(key int, s scene.Scene) {
	if _, exists := e.scenes[key]; !exists {
		e.sceneKeys = append(e.sceneKeys, key)
		sort.Ints(e.sceneKeys)
	}
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	if _, exists := e.scenes[key]; !exists {
		return
	}
	delete(e.scenes, key)
	for i, k := range e.sceneKeys {
		if k == key {
			e.sceneKeys = append(e.sceneKeys[:i], e.sceneKeys[i+1:]...)
			break
		}
	}
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.scenes[key]
}

