package metrics

import (
	"maps"
	"sync"
	"time"

	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// Sample is one metric captured by a Recorder.
type Sample struct {
	Name  string
	Count int64
	Time  time.Duration
	Tags  map[string]string
}

// Recorder is an in-memory statsd.Sink for tests.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

var _ statsd.Sink = (*Recorder)(nil)

// Count implements statsd.Sink.
func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(Sample{Name: name, Count: value, Tags: maps.Clone(tags)})
}

// Timing implements statsd.Sink.
func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(Sample{Name: name, Time: value, Tags: maps.Clone(tags)})
}

func (r *Recorder) add(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

// Named returns the samples recorded under name, in emission order.
func (r *Recorder) Named(name string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range r.samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
