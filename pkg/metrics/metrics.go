package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Dependency-free metrics with Prometheus text exposition.
// Values are atomics; the registry maps are mutex-protected.

// Counter is a monotonically increasing number.
type Counter struct {
	name string
	help string
	val  atomic.Int64
}

func (c *Counter) Inc(delta int64) { c.val.Add(delta) }
func (c *Counter) Get() int64      { return c.val.Load() }

// Gauge is a float that can go up and down.
type Gauge struct {
	name string
	help string
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) { g.bits.Store(math.Float64bits(v)) }
func (g *Gauge) Add(delta float64) {
	for {
		old := g.bits.Load()
		if g.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}
func (g *Gauge) Get() float64 { return math.Float64frombits(g.bits.Load()) }

// Histogram counts observations into fixed upper-bound buckets. The last
// bucket is always +Inf.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	counts  []atomic.Uint64
	sum     Gauge
	count   atomic.Uint64
}

func (h *Histogram) Observe(v float64) {
	i := sort.SearchFloat64s(h.buckets, v)
	if i == len(h.buckets) {
		i = len(h.buckets) - 1
	}
	h.counts[i].Add(1)
	h.count.Add(1)
	h.sum.Add(v)
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 { return h.count.Load() }

// Registry holds all metrics.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

var Default = NewRegistry()

// DurationBuckets suit sub-second request timings, in seconds.
var DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{name: sanitize(name), help: help}
	r.counters[name] = c
	return c
}

func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: sanitize(name), help: help}
	r.gauges[name] = g
	return g
}

func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	bs := append([]float64(nil), buckets...)
	sort.Float64s(bs)
	if len(bs) == 0 || !math.IsInf(bs[len(bs)-1], 1) {
		bs = append(bs, math.Inf(1))
	}
	h := &Histogram{name: sanitize(name), help: help, buckets: bs, counts: make([]atomic.Uint64, len(bs))}
	r.histograms[name] = h
	return h
}

// WriteTo renders every metric in Prometheus text format, sorted by name.
func (r *Registry) WriteTo(w io.Writer) {
	r.mu.RLock()
	counters := sortedValues(r.counters)
	gauges := sortedValues(r.gauges)
	hists := sortedValues(r.histograms)
	r.mu.RUnlock()

	for _, c := range counters {
		header(w, c.name, c.help, "counter")
		fmt.Fprintf(w, "%s %d\n", c.name, c.Get())
	}
	for _, g := range gauges {
		header(w, g.name, g.help, "gauge")
		fmt.Fprintf(w, "%s %g\n", g.name, g.Get())
	}
	for _, h := range hists {
		header(w, h.name, h.help, "histogram")
		var cum uint64
		for i, ub := range h.buckets {
			cum += h.counts[i].Load()
			le := fmt.Sprintf("%g", ub)
			if math.IsInf(ub, 1) {
				le = "+Inf"
			}
			fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, le, cum)
		}
		fmt.Fprintf(w, "%s_sum %g\n", h.name, h.sum.Get())
		fmt.Fprintf(w, "%s_count %d\n", h.name, h.Count())
	}
}

// Handler exposes the registry over HTTP.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WriteTo(w)
	})
}

func header(w io.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, strings.ReplaceAll(help, "\n", " "))
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
}

func sanitize(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
}

func sortedValues[T any](m map[string]T) []T {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	out := make([]T, 0, len(ks))
	for _, k := range ks {
		out = append(out, m[k])
	}
	return out
}

// Timer measures one duration into a histogram.
type Timer struct {
	h     *Histogram
	start time.Time
}

func (h *Histogram) Start() Timer { return Timer{h: h, start: time.Now()} }

// Observe records the time since Start and returns it.
func (t Timer) Observe() time.Duration {
	d := time.Since(t.start)
	if t.h != nil {
		t.h.Observe(d.Seconds())
	}
	return d
}
