package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fractal/engine/camera"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/pipeline"
)

// Renderer is the part of renderer.Renderer a Scene drives. Frame begin/end and presentation
// stay with the engine.
type Renderer interface {
	fractal.Renderer
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
}

// Scene owns a camera and the game objects hosting fractals. Each frame PrepareFrame advances
// the camera and steps every enabled fractal, then DrawCalls records one instanced draw per
// level of every fractal whose bounds intersect the camera frustum.
type Scene interface {
	// Name returns the name of the scene.
	Name() string

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Count returns the number of objects in the scene.
	Count() int

	// Objects returns the objects in insertion order.
	//
	// Returns:
	//   - []game_object.GameObject: a copy of the object list
	Objects() []game_object.GameObject

	// Add registers an object, assigns it an ID when it has none and initializes its fractal
	// against the scene renderer. Fractals configured without a mesh receive the scene's default
	// meshes.
	//
	// Parameters:
	//   - obj: the object to add; it must host a fractal
	//
	// Returns:
	//   - uint64: the object's ID
	//   - error: an error if the object has no fractal or its initialization fails
	Add(obj game_object.GameObject) (uint64, error)

	// Get returns the object with the given ID, or nil.
	Get(id uint64) game_object.GameObject

	// Remove shuts down and drops the object with the given ID. Unknown IDs are ignored.
	Remove(id uint64)

	// Clear shuts down and drops every object.
	Clear()

	// Paused reports whether fractal propagation is suspended.
	Paused() bool

	// SetPaused suspends or resumes fractal propagation. The camera keeps moving while paused.
	SetPaused(paused bool)

	// CullingDisabled reports whether frustum culling is bypassed.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables frustum culling of whole fractals.
	SetCullingDisabled(disabled bool)

	// PrepareFrame advances the camera and the hosts, steps each enabled fractal with its host
	// transform and queues the camera uniform.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous frame
	//
	// Returns:
	//   - error: the joined errors of every fractal that failed to step
	PrepareFrame(dt float32) error

	// DrawCalls records the draws of every visible fractal. It must run between the renderer's
	// BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: an error if a draw call fails
	DrawCalls() error

	// Visible returns how many fractals the last DrawCalls drew.
	Visible() int

	// Release shuts down every fractal and frees the scene's meshes and camera buffers.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name string
	cam  camera.Camera
	r    Renderer

	objects []game_object.GameObject
	nextID  uint64

	paused          bool
	cullingDisabled bool
	visible         int

	// Default meshes handed to fractals configured without one.
	mesh         model.Model
	material     material.Material
	leafMesh     model.Model
	leafMaterial material.Material

	// uploaded tracks mesh providers whose vertex and index buffers exist on the GPU.
	uploaded map[bind_group_provider.BindGroupProvider]struct{}

	cameraWrites []bind_group_provider.BufferWrite
}

var _ Scene = &scene{}

// NewScene creates a Scene bound to a camera and a renderer. It registers the fractal pipelines,
// uploads the default meshes and creates the camera bind group.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to render through
//   - r: the renderer that owns the GPU resources
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: an error if any GPU resource could not be created
func NewScene(name string, cam camera.Camera, r Renderer, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil {
		return nil, errors.New("scene: camera is required")
	}
	if r == nil {
		return nil, errors.New("scene: renderer is required")
	}

	pipelines := fractal.NewPipelines()
	s := &scene{
		mu:           &sync.RWMutex{},
		name:         name,
		cam:          cam,
		r:            r,
		nextID:       1,
		mesh:         model.NewSphere(0.5, 24, 16),
		material:     material.NewMaterial(material.WithName("Fractal"), material.WithPipeline(pipelines[0])),
		leafMesh:     model.NewCube(1),
		leafMaterial: material.NewMaterial(material.WithName("Fractal Leaf"), material.WithPipeline(pipelines[1])),
		uploaded:     make(map[bind_group_provider.BindGroupProvider]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := r.RegisterPipelines(pipelines...); err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}
	if err := s.prepareMesh(s.mesh, s.material); err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}
	if err := s.prepareMesh(s.leafMesh, s.leafMaterial); err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}

	bgp := cam.BindGroupProvider()
	if err := r.InitBindGroup(bgp, camera.BindGroupLayout(), nil); err != nil {
		return nil, fmt.Errorf("scene %q: init camera bind group: %w", name, err)
	}
	s.cameraWrites = []bind_group_provider.BufferWrite{{Provider: bgp, Binding: 0}}

	logger.Logger().Debug("scene created", "scene", name, "mesh", s.mesh.Name(), "leaf_mesh", s.leafMesh.Name())
	return s, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game_object.GameObject, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := obj.Fractal()
	if f == nil {
		return 0, fmt.Errorf("scene %q: object has no fractal", s.name)
	}

	cfg := f.Config()
	var defaults []fractal.FractalBuilderOption
	if cfg.Mesh == nil || cfg.Material == nil {
		defaults = append(defaults, fractal.WithMesh(s.mesh, s.material))
		if cfg.LeafMesh == nil {
			defaults = append(defaults, fractal.WithLeafMesh(s.leafMesh, s.leafMaterial))
		}
	}
	if len(defaults) > 0 {
		if err := f.Reconfigure(defaults...); err != nil {
			return 0, fmt.Errorf("scene %q: %w", s.name, err)
		}
		cfg = f.Config()
	}
	if err := s.prepareMesh(cfg.Mesh, cfg.Material); err != nil {
		return 0, fmt.Errorf("scene %q: %w", s.name, err)
	}
	if err := s.prepareMesh(cfg.LeafMesh, cfg.LeafMaterial); err != nil {
		return 0, fmt.Errorf("scene %q: %w", s.name, err)
	}

	if err := f.Initialize(s.r); err != nil {
		return 0, fmt.Errorf("scene %q: %w", s.name, err)
	}

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.objects = append(s.objects, obj)
	return obj.ID(), nil
}

// prepareMesh uploads a mesh and registers a material's pipeline when they are engine types.
// Caller must hold s.mu.
func (s *scene) prepareMesh(mesh fractal.Mesh, mat fractal.Material) error {
	if m, ok := mesh.(model.Model); ok {
		if err := s.uploadMesh(m); err != nil {
			return err
		}
	}
	if m, ok := mat.(material.Material); ok && m.Pipeline() != nil {
		if err := s.r.RegisterPipelines(m.Pipeline()); err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) uploadMesh(m model.Model) error {
	bgp := m.BindGroupProvider()
	if _, done := s.uploaded[bgp]; done {
		return nil
	}
	if err := s.r.InitMeshBuffers(bgp, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return fmt.Errorf("upload mesh %q: %w", m.Name(), err)
	}
	s.uploaded[bgp] = struct{}{}
	return nil
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.objects {
		if obj.ID() == id {
			return obj
		}
	}
	return nil
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obj := range s.objects {
		if obj.ID() != id {
			continue
		}
		obj.Fractal().Shutdown()
		s.objects = append(s.objects[:i], s.objects[i+1:]...)
		return
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *scene) clear() {
	for _, obj := range s.objects {
		obj.Fractal().Shutdown()
	}
	s.objects = nil
}

func (s *scene) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

func (s *scene) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) PrepareFrame(dt float32) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ctrl := s.cam.Controller(); ctrl != nil {
		ctrl.Advance(dt)
	}
	s.cam.Update()
	s.cameraWrites[0].Data = s.cam.UniformBytes()
	s.r.WriteBuffers(s.cameraWrites)

	if s.paused {
		return nil
	}

	var errs []error
	for _, obj := range s.objects {
		if !obj.Enabled() {
			continue
		}
		obj.Advance(dt)
		if err := obj.Fractal().Update(dt, obj.Transform()); err != nil {
			errs = append(errs, fmt.Errorf("object %d: %w", obj.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frustum := s.cam.Frustum()
	cameraBGP := s.cam.BindGroupProvider()
	s.visible = 0
	for _, obj := range s.objects {
		if !obj.Enabled() {
			continue
		}
		f := obj.Fractal()
		if !s.cullingDisabled {
			center, extents := f.Bounds()
			if !frustum.IntersectsAABB(center, extents) {
				continue
			}
		}
		if err := f.Draw(s.r, cameraBGP); err != nil {
			return fmt.Errorf("draw object %d in scene %q: %w", obj.ID(), s.name, err)
		}
		s.visible++
	}
	return nil
}

func (s *scene) Visible() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	for bgp := range s.uploaded {
		bgp.Release()
	}
	s.uploaded = make(map[bind_group_provider.BindGroupProvider]struct{})
	s.cam.BindGroupProvider().Release()
}

