// Package timing records how long the stages of a run take.
package timing

import (
	"sync"
	"time"
)

// Stage is one measured step.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Recorder collects stage durations in the order they finish.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	stages []Stage
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Start begins measuring a stage. Calling the returned function ends it and
// returns the elapsed time.
func (r *Recorder) Start(name string) func() time.Duration {
	start := r.now()
	return func() time.Duration {
		d := r.now().Sub(start)
		r.mu.Lock()
		r.stages = append(r.stages, Stage{Name: name, Duration: d})
		r.mu.Unlock()
		return d
	}
}

// Stages returns the finished stages.
func (r *Recorder) Stages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Stage(nil), r.stages...)
}

// KeyVals flattens the stages into logger key/value pairs with millisecond
// values, e.g. "segment_ms", 12.
func (r *Recorder) KeyVals() []any {
	stages := r.Stages()
	out := make([]any, 0, len(stages)*2)
	for _, s := range stages {
		out = append(out, s.Name+"_ms", s.Duration.Milliseconds())
	}
	return out
}
