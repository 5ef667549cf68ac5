package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestTickReportsAtInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var reports []Report
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second), WithReportHandler(func(r Report) {
		reports = append(reports, r)
	}))

	for range 29 {
		clock.t = clock.t.Add(time.Second / 60)
		assert.False(t, p.Tick())
	}
	clock.t = clock.t.Add(time.Second / 2)
	assert.True(t, p.Tick())

	require.Len(t, reports, 1)
	assert.InDelta(t, 30/(29.0/60+0.5), reports[0].FPS, 0.01)
	assert.Positive(t, reports[0].Heap)
}

func TestObserveStepAggregates(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var got Report
	p := NewProfiler(WithClock(clock.now), WithReportHandler(func(r Report) { got = r }))

	p.ObserveStep(fractal.Stats{Total: 2 * time.Millisecond, Levels: []time.Duration{1, 5, 2}})
	p.ObserveStep(fractal.Stats{Total: 4 * time.Millisecond, Levels: []time.Duration{1, 5, 9}})

	clock.t = clock.t.Add(2 * time.Second)
	require.True(t, p.Tick())

	assert.Equal(t, uint64(2), got.Steps)
	assert.Equal(t, 3*time.Millisecond, got.AvgStep)
	assert.Equal(t, 4*time.Millisecond, got.MaxStep)
	assert.Equal(t, 2, got.SlowestLevel)

	// Counters restart after a report.
	clock.t = clock.t.Add(2 * time.Second)
	require.True(t, p.Tick())
	assert.Zero(t, got.Steps)
	assert.Zero(t, got.AvgStep)
}
