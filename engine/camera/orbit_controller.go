package camera

import (
	"sync"

	"github.com/chewxy/math32"
)

// orbitController is the implementation of the OrbitController interface.
type orbitController struct {
	mu *sync.Mutex

	target    [3]float32
	radius    float32
	azimuth   float32 // around Y, 0 looks down -Z from +Z
	elevation float32 // above the horizontal plane

	minRadius, maxRadius       float32
	minElevation, maxElevation float32

	orbitSpeed float32 // radians per second while a key is held
	zoomSpeed  float32
	autoOrbit  float32 // radians per second applied every Advance
}

// OrbitController places the camera on a sphere around a target. The spherical coordinates are
// the state; the position is derived from them.
type OrbitController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// Target returns the look-at point.
	//
	// Returns:
	//   - [3]float32: the target
	Target() [3]float32

	// SetTarget moves the pivot point. The orbit angles and radius are kept.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target [3]float32)

	// Radius returns the distance from the target.
	Radius() float32

	// SetRadius sets the distance from the target, clamped to the radius bounds.
	SetRadius(radius float32)

	// Orbit turns the camera around the target. The elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: the azimuth change in radians
	//   - dElevation: the elevation change in radians
	Orbit(dAzimuth, dElevation float32)

	// OrbitSpeed returns the keyboard orbit speed in radians per second.
	OrbitSpeed() float32

	// Zoom moves the camera toward the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Advance applies the automatic orbit for dt seconds.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Advance(dt float32)
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller with defaults that frame a unit-scale fractal.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       8,
		elevation:    math32.Pi / 8,
		minRadius:    1,
		maxRadius:    200,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,
		orbitSpeed:   1.5,
		zoomSpeed:    0.5,
	}
	for _, opt := range options {
		opt(oc)
	}
	oc.radius = clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = clamp(oc.elevation, oc.minElevation, oc.maxElevation)
	return oc
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

func (oc *orbitController) Position() [3]float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	sinElev, cosElev := math32.Sincos(oc.elevation)
	sinAzim, cosAzim := math32.Sincos(oc.azimuth)
	return [3]float32{
		oc.target[0] + oc.radius*cosElev*sinAzim,
		oc.target[1] + oc.radius*sinElev,
		oc.target[2] + oc.radius*cosElev*cosAzim,
	}
}

func (oc *orbitController) Target() [3]float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(target [3]float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) SetRadius(radius float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = clamp(radius, oc.minRadius, oc.maxRadius)
}

func (oc *orbitController) Orbit(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += dAzimuth
	oc.elevation = clamp(oc.elevation+dElevation, oc.minElevation, oc.maxElevation)
}

func (oc *orbitController) OrbitSpeed() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.orbitSpeed
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = clamp(oc.radius-delta*oc.zoomSpeed, oc.minRadius, oc.maxRadius)
}

func (oc *orbitController) Advance(dt float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += oc.autoOrbit * dt
}
