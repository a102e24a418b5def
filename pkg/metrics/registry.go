// Package metrics provides the run-scoped instrumentation sink shared by the
// grouping collectors and the hash computer.
package metrics

import (
	"io"
	"sort"
	"strings"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Registry is a thread-safe set of named counters, timers and gauges.
// It is passed explicitly to every component that records metrics.
type Registry struct {
	r gometrics.Registry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{r: gometrics.NewRegistry()}
}

// Name joins name parts with dots: Name("size", "duplicates", "counter") = "size.duplicates.counter"
func Name(parts ...string) string {
	return strings.Join(parts, ".")
}

// Inc increments the named counter by one
func (r *Registry) Inc(name string) {
	gometrics.GetOrRegisterCounter(name, r.r).Inc(1)
}

// Count returns the value of the named counter, or the number of samples of
// the named timer. Unknown names report 0.
func (r *Registry) Count(name string) int64 {
	switch m := r.r.Get(name).(type) {
	case gometrics.Counter:
		return m.Count()
	case gometrics.Timer:
		return m.Count()
	case gometrics.Gauge:
		return m.Value()
	default:
		return 0
	}
}

// Time starts the named timer and returns the function that stops it
func (r *Registry) Time(name string) (stop func()) {
	timer := gometrics.GetOrRegisterTimer(name, r.r)
	start := time.Now()
	return func() {
		timer.UpdateSince(start)
	}
}

// Mark sets the named gauge to 1
func (r *Registry) Mark(name string) {
	gometrics.GetOrRegisterGauge(name, r.r).Update(1)
}

// Marked reports whether the named gauge has been set
func (r *Registry) Marked(name string) bool {
	g, ok := r.r.Get(name).(gometrics.Gauge)
	return ok && g.Value() == 1
}

// Snapshot returns counter values, timer sample counts and gauge values by name
func (r *Registry) Snapshot() map[string]int64 {
	snapshot := make(map[string]int64)
	r.r.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case gometrics.Counter:
			snapshot[name] = m.Count()
		case gometrics.Timer:
			snapshot[name] = m.Count()
		case gometrics.Gauge:
			snapshot[name] = m.Value()
		}
	})
	return snapshot
}

// Names returns the registered metric names in sorted order
func (r *Registry) Names() []string {
	var names []string
	r.r.Each(func(name string, _ interface{}) {
		names = append(names, name)
	})
	sort.Strings(names)
	return names
}

// WriteText dumps every metric in go-metrics' text layout
func (r *Registry) WriteText(w io.Writer) {
	gometrics.WriteOnce(r.r, w)
}
