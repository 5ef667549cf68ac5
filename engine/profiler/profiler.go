// Package profiler reports frame rate, memory churn and fractal propagation cost at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/logger"
	"github.com/dustin/go-humanize"
)

// Report is one interval's worth of measurements.
type Report struct {
	FPS          float64
	Heap         uint64
	AllocPerSec  uint64
	GCCount      uint32
	MaxGCPause   time.Duration
	Sys          uint64
	Steps        uint64
	AvgStep      time.Duration
	MaxStep      time.Duration
	SlowestLevel int
}

// Profiler tracks frame rate, memory and fractal step statistics.
// Tick is called once per rendered frame and ObserveStep once per fractal step.
type Profiler struct {
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	steps       uint64
	stepTotal   time.Duration
	maxStep     time.Duration
	levelTotals []time.Duration
	onReport    func(Report)
}

// NewProfiler creates a Profiler reporting once per second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return p
}

// ObserveStep accumulates the timing of one fractal step.
//
// Parameters:
//   - s: the stats of the step that just completed
func (p *Profiler) ObserveStep(s fractal.Stats) {
	p.steps++
	p.stepTotal += s.Total
	p.maxStep = max(p.maxStep, s.Total)
	if len(p.levelTotals) < len(s.Levels) {
		p.levelTotals = append(p.levelTotals, make([]time.Duration, len(s.Levels)-len(p.levelTotals))...)
	}
	for i, d := range s.Levels {
		p.levelTotals[i] += d
	}
}

// Tick counts a frame and logs a report once the update interval has elapsed.
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	rep := Report{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		Heap:        p.memStats.Alloc,
		AllocPerSec: uint64(float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / elapsed.Seconds()),
		GCCount:     p.memStats.NumGC - p.lastGCCount,
		Sys:         p.memStats.Sys,
		Steps:       p.steps,
		MaxStep:     p.maxStep,
	}

	// PauseNs is a ring of the last 256 pauses.
	start := p.lastGCCount
	if p.memStats.NumGC-start > 256 {
		start = p.memStats.NumGC - 256
	}
	for i := start; i < p.memStats.NumGC; i++ {
		rep.MaxGCPause = max(rep.MaxGCPause, time.Duration(p.memStats.PauseNs[i%256]))
	}

	if p.steps > 0 {
		rep.AvgStep = p.stepTotal / time.Duration(p.steps)
		slowest := time.Duration(-1)
		for i, d := range p.levelTotals {
			if d > slowest {
				slowest, rep.SlowestLevel = d, i
			}
		}
	}

	logger.Logger().Info("profile",
		"fps", humanize.FtoaWithDigits(rep.FPS, 1),
		"heap", humanize.IBytes(rep.Heap),
		"alloc_rate", humanize.IBytes(rep.AllocPerSec)+"/s",
		"gc", rep.GCCount,
		"gc_max_pause", rep.MaxGCPause,
		"sys", humanize.IBytes(rep.Sys),
		"steps", humanize.Comma(int64(rep.Steps)),
		"step_avg", rep.AvgStep,
		"step_max", rep.MaxStep,
		"slowest_level", rep.SlowestLevel,
	)
	if p.onReport != nil {
		p.onReport(rep)
	}

	p.frameCount = 0
	p.lastTime = current
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.steps, p.stepTotal, p.maxStep = 0, 0, 0
	clear(p.levelTotals)
	return true
}
