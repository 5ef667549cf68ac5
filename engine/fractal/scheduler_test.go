package fractal

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, depth int, cfg SchedulerConfig) Scheduler {
	t.Helper()
	tree, err := BuildTree(depth)
	require.NoError(t, err)
	s := NewScheduler(tree, cfg)
	t.Cleanup(s.Close)
	return s
}

// assertGoroutinesSettle waits for the goroutine count to drop back to at most want.
func assertGoroutinesSettle(t *testing.T, want int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		runtime.GC()
		return runtime.NumGoroutine() <= want
	}, 2*time.Second, 10*time.Millisecond, "goroutines did not settle to %d", want)
}

func TestStepPlacesChildrenAtExpectedPositions(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := newTestScheduler(t, 3, SchedulerConfig{Workers: workers, BatchSize: 5})
		require.NoError(t, s.Step(0, common.IdentityTransform()))

		tree := s.Tree()
		assertVecNear(t, [3]float32{0, 0, 0}, tree.Level(0).Matrices[0].C3, 1e-6)
		assertVecNear(t, [3]float32{0, 0.75, 0}, tree.Level(1).Parts[0].WorldPosition, 1e-6)
		assertVecNear(t, [3]float32{0.75, 0, 0}, tree.Level(1).Parts[1].WorldPosition, 1e-6)
		assertVecNear(t, [3]float32{0, 1.125, 0}, tree.Level(2).Parts[0].WorldPosition, 1e-6)
		assertVecNear(t, [3]float32{0.75, -0.375, 0}, tree.Level(2).Parts[6].WorldPosition, 1e-6)
		assert.Equal(t, tree.Level(2).Parts[6].WorldPosition, tree.Level(2).Matrices[6].C3)
		assert.InDelta(t, 0.25, common.Vec3Length(tree.Level(2).Matrices[6].C0), 1e-6)
	}
}

func TestParallelStepMatchesInlineStep(t *testing.T) {
	inline := newTestScheduler(t, 5, SchedulerConfig{Workers: 1, SpinMode: SpinInherited, Sag: true, MaxSag: 0.4})
	parallel := newTestScheduler(t, 5, SchedulerConfig{Workers: 4, BatchSize: 7, SpinMode: SpinInherited, Sag: true, MaxSag: 0.4})
	root := common.Transform{Position: [3]float32{1, -2, 3}, Rotation: common.QuatRotateX(0.3), Scale: 1.5}

	for range 3 {
		require.NoError(t, inline.Step(0.1, root))
		require.NoError(t, parallel.Step(0.1, root))
	}

	for L := range 5 {
		assert.Equal(t, inline.Tree().Level(L).Matrices, parallel.Tree().Level(L).Matrices, "level %d", L)
	}
}

func TestChildrenNeverReadUnwrittenParents(t *testing.T) {
	const depth = 5
	var step atomic.Int64
	stamps := make([][]atomic.Int64, depth)
	for L := range depth {
		stamps[L] = make([]atomic.Int64, LevelSize(L))
	}

	var levelsMu sync.Mutex
	var levels []int
	s := newTestScheduler(t, depth, SchedulerConfig{
		Workers:   4,
		BatchSize: 5,
		PartObserver: func(level, index int) {
			current := step.Load()
			if level > 0 {
				assert.Equal(t, current, stamps[level-1][ParentIndex(index)].Load(), "level %d part %d ran before its parent", level, index)
			}
			stamps[level][index].Store(current)
		},
		LevelObserver: func(level int) {
			levelsMu.Lock()
			levels = append(levels, level)
			levelsMu.Unlock()
			// every part of the finished level is written before the next level starts
			for i := range stamps[level] {
				assert.Equal(t, step.Load(), stamps[level][i].Load())
			}
		},
	})

	for n := int64(1); n <= 3; n++ {
		step.Store(n)
		require.NoError(t, s.Step(0.016, common.IdentityTransform()))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1, 2, 3, 4}, levels)
}

func TestStepRejectsReentry(t *testing.T) {
	var s Scheduler
	var nested error
	s = newTestScheduler(t, 3, SchedulerConfig{
		Workers: 1,
		LevelObserver: func(level int) {
			if level == 1 {
				nested = s.Step(1, common.IdentityTransform())
			}
		},
	})

	require.NoError(t, s.Step(0, common.IdentityTransform()))
	assert.ErrorIs(t, nested, ErrStepInFlight)
	assert.Equal(t, uint64(1), s.Stats().Steps)
	assert.Zero(t, s.Tree().Level(0).Parts[0].SpinAngle)
}

func TestStepPhases(t *testing.T) {
	type seen struct {
		phase Phase
		level int
	}
	var s Scheduler
	var got []seen
	s = newTestScheduler(t, 3, SchedulerConfig{
		Workers: 1,
		LevelObserver: func(level int) {
			p, l := s.State()
			got = append(got, seen{p, l})
		},
	})

	p, _ := s.State()
	assert.Equal(t, PhaseIdle, p)

	require.NoError(t, s.Step(0.5, common.IdentityTransform()))
	assert.Equal(t, []seen{
		{PhaseRootUpdated, 0},
		{PhaseLevelInProgress, 1},
		{PhaseLevelInProgress, 2},
	}, got)

	p, l := s.State()
	assert.Equal(t, PhaseAllComplete, p)
	assert.Equal(t, 2, l)
	assert.Equal(t, "all-complete", p.String())
}

func TestUniformSpinAdvancesEveryPart(t *testing.T) {
	s := newTestScheduler(t, 3, SchedulerConfig{Workers: 1})
	for range 2 {
		require.NoError(t, s.Step(1, common.IdentityTransform()))
	}

	want := 2 * float32(DefaultSpinRate)
	assert.InDelta(t, want, s.Tree().Level(0).Parts[0].SpinAngle, 1e-6)
	for _, p := range s.Tree().Level(2).Parts {
		assert.InDelta(t, want, p.SpinAngle, 1e-6)
	}
}

func TestStepStats(t *testing.T) {
	s := newTestScheduler(t, 4, SchedulerConfig{Workers: 2})
	require.NoError(t, s.Step(0.016, common.IdentityTransform()))

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Steps)
	assert.Len(t, stats.Levels, 4)
	assert.GreaterOrEqual(t, stats.Total, stats.Levels[1])
	assert.Equal(t, 2, s.Workers())
}

func TestStepDoesNotAllocate(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := newTestScheduler(t, 6, SchedulerConfig{Workers: workers})
		root := common.IdentityTransform()
		require.NoError(t, s.Step(0.016, root))

		allocs := testing.AllocsPerRun(20, func() {
			_ = s.Step(0.016, root)
		})
		assert.Zero(t, allocs, "workers=%d", workers)
	}
}

func TestSpinKeepsParentDistances(t *testing.T) {
	root := common.Transform{Position: [3]float32{2, 1, -3}, Rotation: common.QuatRotateZ(0.7), Scale: 2}
	for _, mode := range []SpinMode{SpinUniform, SpinInherited} {
		for _, workers := range []int{1, 4} {
			s := newTestScheduler(t, 4, SchedulerConfig{Workers: workers, SpinMode: mode})
			for range 37 {
				require.NoError(t, s.Step(0.05, root))
			}

			tree := s.Tree()
			want := 1.5 * root.Scale
			for L := 1; L < tree.Depth(); L++ {
				want *= 0.5
				parents := tree.Level(L - 1).Parts
				for i, p := range tree.Level(L).Parts {
					d := common.Vec3Length(common.Vec3Sub(p.WorldPosition, parents[ParentIndex(i)].WorldPosition))
					assert.InDelta(t, want, d, 1e-4, "%s workers=%d level %d part %d", mode, workers, L, i)
				}
			}
			assert.NotZero(t, tree.Level(1).Parts[0].SpinAngle)
		}
	}
}

func TestCloseStopsWorkers(t *testing.T) {
	before := runtime.NumGoroutine()

	tree, err := BuildTree(4)
	require.NoError(t, err)
	s := NewScheduler(tree, SchedulerConfig{Workers: 6})
	require.Greater(t, runtime.NumGoroutine(), before)
	require.NoError(t, s.Step(0.016, common.IdentityTransform()))

	s.Close()
	s.Close()
	assertGoroutinesSettle(t, before)
	assert.ErrorIs(t, s.Step(0.016, common.IdentityTransform()), ErrInactive)
	assert.Equal(t, uint64(1), s.Stats().Steps)
}

func TestCloseWaitsForRunningStep(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s := newTestScheduler(t, 4, SchedulerConfig{
		Workers:   4,
		BatchSize: 5,
		LevelObserver: func(level int) {
			if level == 1 {
				once.Do(func() {
					close(started)
					<-release
				})
			}
		},
	})

	stepDone := make(chan error, 1)
	go func() { stepDone <- s.Step(0.016, common.IdentityTransform()) }()
	<-started

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a step was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stepDone)
	<-closed
}
