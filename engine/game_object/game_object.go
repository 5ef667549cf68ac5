package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
)

type gameObject struct {
	mu      *sync.Mutex
	id      uint64
	enabled atomic.Bool
	frac    fractal.Fractal

	transform     common.Transform
	rotationSpeed [3]float32
}

// GameObject is a scene entity that hosts a fractal.
// It owns the host transform that the fractal root inherits every frame.
type GameObject interface {
	// ID returns the object's unique identifier within its scene.
	ID() uint64

	// SetID sets the object's unique identifier. The scene assigns one when the object is added.
	SetID(id uint64)

	// Enabled returns whether the object is updated and drawn.
	Enabled() bool

	// SetEnabled enables or disables the object.
	SetEnabled(enabled bool)

	// Fractal returns the hosted fractal, or nil if none is attached.
	//
	// Returns:
	//   - fractal.Fractal: the attached fractal or nil
	Fractal() fractal.Fractal

	// SetFractal attaches a fractal to this object.
	//
	// Parameters:
	//   - f: the fractal to host
	SetFractal(f fractal.Fractal)

	// Transform returns a snapshot of the host transform.
	//
	// Returns:
	//   - common.Transform: the current position, rotation and uniform scale
	Transform() common.Transform

	// SetPosition moves the host.
	SetPosition(position [3]float32)

	// SetRotation replaces the host orientation. The quaternion is normalized before it is stored.
	SetRotation(rotation common.Quat)

	// SetScale sets the uniform host scale.
	SetScale(scale float32)

	// RotationSpeed returns the per-axis angular velocity in radians per second.
	RotationSpeed() [3]float32

	// SetRotationSpeed sets the per-axis angular velocity in radians per second.
	// Advance applies it about the local X, then Y, then Z axis.
	SetRotationSpeed(speed [3]float32)

	// Advance integrates the rotation speed over dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a GameObject at the identity transform.
//
// Parameters:
//   - options: variadic list of GameObjectBuilderOption functions
//
// Returns:
//   - GameObject: the configured object, enabled by default
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:        &sync.Mutex{},
		transform: common.IdentityTransform(),
	}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (o *gameObject) ID() uint64 {
	return o.id
}

func (o *gameObject) SetID(id uint64) {
	o.id = id
}

func (o *gameObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *gameObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *gameObject) Fractal() fractal.Fractal {
	return o.frac
}

func (o *gameObject) SetFractal(f fractal.Fractal) {
	o.frac = f
}

func (o *gameObject) Transform() common.Transform {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transform
}

func (o *gameObject) SetPosition(position [3]float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.Position = position
}

func (o *gameObject) SetRotation(rotation common.Quat) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.Rotation = rotation.Normalize()
}

func (o *gameObject) SetScale(scale float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.Scale = scale
}

func (o *gameObject) RotationSpeed() [3]float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rotationSpeed
}

func (o *gameObject) SetRotationSpeed(speed [3]float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotationSpeed = speed
}

func (o *gameObject) Advance(dt float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.rotationSpeed
	if s == [3]float32{} || dt == 0 {
		return
	}
	step := common.QuatRotateX(s[0] * dt).
		Mul(common.QuatRotateY(s[1] * dt)).
		Mul(common.QuatRotateZ(s[2] * dt))
	// Renormalize so accumulated drift never reaches the packed matrices.
	o.transform.Rotation = o.transform.Rotation.Mul(step).Normalize()
}
