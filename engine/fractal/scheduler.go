package fractal

import (
	"cmp"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/chewxy/math32"
)

// DefaultSpinRate is the spin speed in radians per second, a sixteenth of a turn.
const DefaultSpinRate = 0.125 * math32.Pi

// DefaultMaxSag is the sag of a fully horizontal part in radians when sag is enabled without an angle.
const DefaultMaxSag = 0.125 * math32.Pi

// Phase is the scheduler's position within a step.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseRootUpdated
	PhaseLevelInProgress
	PhaseAllComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseRootUpdated:
		return "root-updated"
	case PhaseLevelInProgress:
		return "level-in-progress"
	case PhaseAllComplete:
		return "all-complete"
	default:
		return "idle"
	}
}

// Stats reports the timing of the most recent step.
type Stats struct {
	Steps  uint64
	Total  time.Duration
	Levels []time.Duration
}

// SchedulerConfig configures a Scheduler. Zero values select the defaults.
type SchedulerConfig struct {
	// Workers is the number of pool workers. 1 runs every level inline on the caller.
	// Zero selects NumCPU-1 (at least 1).
	Workers int
	// BatchSize is the number of parts one task updates. Zero picks a size that gives each
	// worker a few batches per level.
	BatchSize int
	// SpinMode selects uniform or inherited spin.
	SpinMode SpinMode
	// SpinRate is the spin speed in radians per second. Zero selects DefaultSpinRate.
	SpinRate float32
	// Sag enables the gravity sag correction.
	Sag bool
	// MaxSag is the sag angle in radians.
	MaxSag float32
	// LevelObserver, when set, is called on the stepping goroutine after every level completes,
	// including the root as level 0.
	LevelObserver func(level int)
	// PartObserver, when set, is called after each part is written. It runs on worker
	// goroutines and must be safe for concurrent use.
	PartObserver func(level, index int)
}

type batch struct {
	start, end int
}

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	tree *Tree
	cfg  SchedulerConfig

	// workers is empty when the scheduler runs inline. Close closes stop, which ends every worker.
	workers []worker.Worker
	queue   chan worker.Task
	stop    chan int
	wg      sync.WaitGroup

	// lifeMu orders Close against a running Step.
	lifeMu *sync.Mutex
	closed bool

	// batches and tasks are indexed by level and built once, so dispatch allocates nothing.
	batches [][]batch
	tasks   [][]worker.Task
	params  []KernelParams

	inFlight atomic.Bool
	phase    atomic.Int32
	level    atomic.Int32

	statsMu *sync.Mutex
	stats   Stats
}

// Scheduler propagates transforms through a Tree one level at a time. The root is updated
// serially, then every level is split into disjoint batches that run in parallel, and a barrier
// separates each level from the next so children only ever read finished parents.
type Scheduler interface {
	// Step runs one full propagation pass.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//   - root: the world transform of the owning object
	//
	// Returns:
	//   - error: ErrStepInFlight if another Step has not returned yet, ErrInactive after Close
	Step(dt float32, root common.Transform) error

	// State reports the current phase and, during PhaseLevelInProgress, the level being updated.
	//
	// Returns:
	//   - Phase: the current phase
	//   - int: the current or last completed level
	State() (Phase, int)

	// Stats returns a copy of the timing of the most recent step.
	//
	// Returns:
	//   - Stats: the step timing
	Stats() Stats

	// Tree returns the tree being updated.
	//
	// Returns:
	//   - *Tree: the tree
	Tree() *Tree

	// Workers returns the number of workers used per level.
	//
	// Returns:
	//   - int: the worker count
	Workers() int

	// Close stops the worker goroutines and drops the task closures that reference the tree.
	// It waits for a running Step to finish. Steps after Close return ErrInactive. Safe to call
	// more than once.
	Close()
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Scheduler for the tree and prebuilds the batch tasks of every level.
//
// Parameters:
//   - tree: the tree to update
//   - cfg: the scheduler configuration
//
// Returns:
//   - Scheduler: the scheduler
func NewScheduler(tree *Tree, cfg SchedulerConfig) Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = max(runtime.NumCPU()-1, 1)
	}
	cfg.SpinRate = cmp.Or(cfg.SpinRate, float32(DefaultSpinRate))

	depth := tree.Depth()
	s := &scheduler{
		tree:    tree,
		cfg:     cfg,
		batches: make([][]batch, depth),
		tasks:   make([][]worker.Task, depth),
		params:  make([]KernelParams, depth),
		lifeMu:  &sync.Mutex{},
		statsMu: &sync.Mutex{},
		stats:   Stats{Levels: make([]time.Duration, depth)},
	}
	if cfg.Workers > 1 {
		s.queue = make(chan worker.Task, 256)
		s.stop = make(chan int)
		s.workers = make([]worker.Worker, cfg.Workers)
		for i := range s.workers {
			s.workers[i] = worker.NewWorker(i, s.queue, s.stop, time.Second, func(int) {})
			s.workers[i].Start()
		}
	}

	taskID := 0
	for L := 1; L < depth; L++ {
		n := tree.Level(L).Len()
		size := cfg.BatchSize
		if size <= 0 {
			size = max((n+cfg.Workers*4-1)/(cfg.Workers*4), Branching)
		}
		for start := 0; start < n; start += size {
			s.batches[L] = append(s.batches[L], batch{start: start, end: min(start+size, n)})
		}

		if len(s.workers) == 0 || len(s.batches[L]) == 1 {
			continue
		}
		s.tasks[L] = make([]worker.Task, len(s.batches[L]))
		for i, b := range s.batches[L] {
			level := L
			s.tasks[L][i] = worker.Task{
				ID: taskID,
				Do: func() (any, error) {
					defer s.wg.Done()
					s.updateRange(level, b.start, b.end)
					return nil, nil
				},
			}
			taskID++
		}
	}
	return s
}

func (s *scheduler) Step(dt float32, root common.Transform) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrStepInFlight
	}
	defer s.inFlight.Store(false)

	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closed {
		return ErrInactive
	}

	s.setPhase(PhaseIdle, 0)
	start := time.Now()
	spinDelta := s.cfg.SpinRate * dt

	rootLevel := s.tree.Level(0)
	UpdateRoot(&rootLevel.Parts[0], &rootLevel.Matrices[0], root, spinDelta)
	s.setPhase(PhaseRootUpdated, 0)
	if s.cfg.PartObserver != nil {
		s.cfg.PartObserver(0, 0)
	}
	if s.cfg.LevelObserver != nil {
		s.cfg.LevelObserver(0)
	}
	rootDone := time.Since(start)

	depth := s.tree.Depth()
	scale := root.Scale
	for L := 1; L < depth; L++ {
		scale *= 0.5
		s.params[L] = KernelParams{
			SpinDelta: spinDelta,
			Scale:     scale,
			Mode:      s.cfg.SpinMode,
			Sag:       s.cfg.Sag,
			MaxSag:    s.cfg.MaxSag,
		}
		s.setPhase(PhaseLevelInProgress, L)

		levelStart := time.Now()
		s.runLevel(L)
		s.recordLevel(L, time.Since(levelStart))

		if s.cfg.LevelObserver != nil {
			s.cfg.LevelObserver(L)
		}
	}

	s.statsMu.Lock()
	s.stats.Levels[0] = rootDone
	s.stats.Total = time.Since(start)
	s.stats.Steps++
	s.statsMu.Unlock()

	s.setPhase(PhaseAllComplete, depth-1)
	return nil
}

// runLevel updates every part of level L and returns once all of them are written.
func (s *scheduler) runLevel(level int) {
	tasks := s.tasks[level]
	if len(tasks) == 0 {
		for _, b := range s.batches[level] {
			s.updateRange(level, b.start, b.end)
		}
		return
	}

	s.wg.Add(len(tasks))
	for i := range tasks {
		s.queue <- tasks[i]
	}
	s.wg.Wait()
}

func (s *scheduler) updateRange(level, start, end int) {
	parents := s.tree.levels[level-1].Parts
	lvl := &s.tree.levels[level]
	p := s.params[level]
	for i := start; i < end; i++ {
		UpdatePart(&parents[ParentIndex(i)], &lvl.Parts[i], &lvl.Matrices[i], p)
		if s.cfg.PartObserver != nil {
			s.cfg.PartObserver(level, i)
		}
	}
}

func (s *scheduler) recordLevel(level int, d time.Duration) {
	s.statsMu.Lock()
	s.stats.Levels[level] = d
	s.statsMu.Unlock()
}

func (s *scheduler) setPhase(p Phase, level int) {
	s.level.Store(int32(level))
	s.phase.Store(int32(p))
}

func (s *scheduler) State() (Phase, int) {
	return Phase(s.phase.Load()), int(s.level.Load())
}

func (s *scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	out := s.stats
	out.Levels = slices.Clone(s.stats.Levels)
	return out
}

func (s *scheduler) Tree() *Tree {
	return s.tree
}

func (s *scheduler) Workers() int {
	return s.cfg.Workers
}

func (s *scheduler) Close() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.stop != nil {
		close(s.stop)
	}
	s.workers = nil
	s.tasks = nil
}
