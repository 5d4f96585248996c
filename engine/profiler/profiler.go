package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastFPS        float64
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - interval: the reporting interval; values <= 0 report on every Tick
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = max(interval, 0)
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs FPS, heap usage, allocation rate, GC count/pause times and total memory at Info
// once the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	p.lastFPS = float64(p.frameCount) / seconds

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", p.lastFPS,
		"heapMB", allocMB,
		"allocRateMBs", allocRateMB,
		"gc", gcCount,
		"lastPauseUs", lastPauseUs,
		"maxPauseUs", maxPauseUs,
		"sysMB", sysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// FPS returns the frame rate measured at the last report.
//
// Returns:
//   - float64: frames per second, or 0 before the first report
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}
