package main

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/camera"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
)

// dragRadiansPerPixel converts cursor motion into orbit angles.
const dragRadiansPerPixel = 0.005

// pauser is the part of scene.Scene the controls toggle.
type pauser interface {
	Paused() bool
	SetPaused(paused bool)
}

// controls maps window input onto the fractal, the scene and the camera. Key callbacks arrive
// on the window thread while Tick runs on the engine tick goroutine.
type controls struct {
	mu   sync.Mutex
	held map[uint32]bool

	frac  fractal.Fractal
	scene pauser
	orbit camera.OrbitController
}

func newControls(f fractal.Fractal, s pauser, orbit camera.OrbitController) *controls {
	return &controls{
		held:  make(map[uint32]bool),
		frac:  f,
		scene: s,
		orbit: orbit,
	}
}

// KeyDown applies the discrete bindings: 1-8 set the depth, U and I select the spin mode,
// G toggles sag and Space toggles pause.
func (c *controls) KeyDown(key uint32) {
	c.mu.Lock()
	repeat := c.held[key]
	c.held[key] = true
	c.mu.Unlock()
	if repeat {
		return
	}
	if err := c.apply(key); err != nil {
		logger.Logger().Warn("control failed", "key", key, "err", err)
	}
}

func (c *controls) KeyUp(key uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, key)
}

func (c *controls) apply(key uint32) error {
	if d := common.DigitKey(key); d >= fractal.MinDepth && d <= fractal.MaxDepth {
		if d == c.frac.Depth() {
			return nil
		}
		return c.reconfigure(fmt.Sprintf("depth %d", d), fractal.WithDepth(d))
	}

	switch key {
	case common.KeyU:
		return c.reconfigure("uniform spin", fractal.WithSpinMode(fractal.SpinUniform))
	case common.KeyI:
		return c.reconfigure("inherited spin", fractal.WithSpinMode(fractal.SpinInherited))
	case common.KeyG:
		sag := !c.frac.Config().Sag
		return c.reconfigure(fmt.Sprintf("sag %t", sag), fractal.WithSag(sag, 0))
	case common.KeySpace:
		paused := !c.scene.Paused()
		c.scene.SetPaused(paused)
		logger.Logger().Info("pause toggled", "paused", paused)
	}
	return nil
}

func (c *controls) reconfigure(what string, opt fractal.FractalBuilderOption) error {
	if err := c.frac.Reconfigure(opt); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	logger.Logger().Info("fractal reconfigured", "change", what, "fractal", c.frac.ID())
	return nil
}

// Tick orbits the camera while W, A, S or D is held.
//
// Parameters:
//   - dt: elapsed seconds since the previous tick
func (c *controls) Tick(dt float32) {
	c.mu.Lock()
	var az, el float32
	if c.held[common.KeyA] {
		az--
	}
	if c.held[common.KeyD] {
		az++
	}
	if c.held[common.KeyW] {
		el++
	}
	if c.held[common.KeyS] {
		el--
	}
	c.mu.Unlock()

	if az == 0 && el == 0 {
		return
	}
	step := c.orbit.OrbitSpeed() * dt
	c.orbit.Orbit(az*step, el*step)
}

// Drag orbits the camera by a cursor delta in pixels.
func (c *controls) Drag(dx, dy float32) {
	c.orbit.Orbit(dx*dragRadiansPerPixel, dy*dragRadiansPerPixel)
}

// Scroll zooms the camera.
func (c *controls) Scroll(delta float32) {
	c.orbit.Zoom(delta)
}
