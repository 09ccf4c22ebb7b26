// Package prom exposes the latest meter readings as Prometheus gauges.
package prom

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
	"github.com/vshulcz/dsmr-exporter/internal/ports"
)

// Registry keeps one value per catalog metric. Updates replace the whole
// snapshot, so a scrape sees either the previous batch or the new one.
type Registry struct {
	entries []domain.CatalogEntry
	descs   []*prometheus.Desc

	mu     sync.RWMutex
	values map[string]float64

	info   *prometheus.GaugeVec
	cycles *prometheus.CounterVec
}

var (
	_ ports.MetricsSink    = (*Registry)(nil)
	_ prometheus.Collector = (*Registry)(nil)
)

// New returns a Registry with every catalog gauge at zero.
func New(version string) *Registry {
	entries := domain.Catalog()
	r := &Registry{
		entries: entries,
		descs:   make([]*prometheus.Desc, len(entries)),
		values:  make(map[string]float64, len(entries)),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsmr_exporter_info",
			Help: "DSMR exporter build information.",
		}, []string{"version"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dsmr_exporter_cycles_total",
			Help: "Collection cycles by outcome.",
		}, []string{"outcome"}),
	}
	for i, e := range entries {
		r.descs[i] = prometheus.NewDesc(e.Name, e.Help, nil, nil)
		r.values[e.Name] = 0
	}
	r.info.WithLabelValues(version).Set(1)
	for _, o := range []domain.Outcome{domain.OutcomeSuccess, domain.OutcomeSkipped} {
		r.cycles.WithLabelValues(string(o))
	}
	return r
}

// Update applies samples as one batch. Metrics not named in samples keep
// their previous value. An unknown metric name panics.
func (r *Registry) Update(samples []domain.MetricSample) {
	if len(samples) == 0 {
		return
	}
	for _, s := range samples {
		if _, ok := domain.LookupMetric(s.Name); !ok {
			panic(fmt.Sprintf("prom: unknown metric %q", s.Name))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := maps.Clone(r.values)
	for _, s := range samples {
		next[s.Name] = s.Value
	}
	r.values = next
}

// Value returns the current value of a catalog metric.
func (r *Registry) Value(name string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	return v, ok
}

// Snapshot returns a copy of all current values.
func (r *Registry) Snapshot() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.values)
}

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range r.descs {
		ch <- d
	}
	r.info.Describe(ch)
	r.cycles.Describe(ch)
}

// Collect implements prometheus.Collector.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.mu.RLock()
	values := r.values
	r.mu.RUnlock()

	for i, e := range r.entries {
		ch <- prometheus.MustNewConstMetric(r.descs[i], prometheus.GaugeValue, values[e.Name])
	}
	r.info.Collect(ch)
	r.cycles.Collect(ch)
}

// ObserveCycle counts a finished collection cycle. It has the shape of an
// observer callback.
func (r *Registry) ObserveCycle(_ context.Context, res domain.CycleResult) error {
	if res.Outcome == "" {
		return fmt.Errorf("prom: cycle %d has no outcome", res.Seq)
	}
	r.cycles.WithLabelValues(string(res.Outcome)).Inc()
	return nil
}

// NewGatherer builds a dedicated prometheus registry holding r, the Go
// runtime and process collectors, and any extra collectors.
func NewGatherer(r *Registry, extra ...prometheus.Collector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	cs := []prometheus.Collector{
		r,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range append(cs, extra...) {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
