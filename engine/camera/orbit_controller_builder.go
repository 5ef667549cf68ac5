package camera

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitController)

// WithTarget sets the initial pivot point.
//
// Parameters:
//   - target: the world-space pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set the target
func WithTarget(target [3]float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadius sets the initial distance from the target.
func WithRadius(radius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
//
// Parameters:
//   - azimuth: the horizontal angle around Y
//   - elevation: the vertical angle above the horizontal plane
//
// Returns:
//   - OrbitControllerOption: functional option to set the angles
func WithAngles(azimuth, elevation float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
		oc.elevation = elevation
	}
}

// WithRadiusBounds sets the minimum and maximum distance from the target.
func WithRadiusBounds(minRadius, maxRadius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.minRadius = minRadius
		oc.maxRadius = maxRadius
	}
}

// WithOrbitSpeed sets the keyboard orbit speed in radians per second.
func WithOrbitSpeed(speed float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the zoom speed multiplier.
func WithZoomSpeed(speed float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.zoomSpeed = speed
	}
}

// WithAutoOrbit makes the camera circle the target at the given speed in radians per second.
func WithAutoOrbit(speed float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.autoOrbit = speed
	}
}
