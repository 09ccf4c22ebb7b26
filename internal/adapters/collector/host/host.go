// Package host reports facts about the machine the exporter runs on.
package host

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// Info is a one-off summary logged at startup.
type Info struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelArch      string
	CPUs            int
	MemoryTotal     uint64
}

// Describe gathers what it can; missing facts stay zero.
func Describe(ctx context.Context) (Info, error) {
	var out Info
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return out, err
	}
	out.Hostname = hi.Hostname
	out.OS = hi.OS
	out.Platform = hi.Platform
	out.PlatformVersion = hi.PlatformVersion
	out.KernelArch = hi.KernelArch

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		out.CPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		out.MemoryTotal = vm.Total
	}
	return out, nil
}

// Fields renders the summary as log fields.
func (i Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("hostname", i.Hostname),
		zap.String("os", i.OS),
		zap.String("platform", i.Platform),
		zap.String("platform_version", i.PlatformVersion),
		zap.String("arch", i.KernelArch),
		zap.Int("cpus", i.CPUs),
		zap.Uint64("memory_total", i.MemoryTotal),
	}
}

// Collector samples host memory and CPU load on every scrape.
type Collector struct {
	memTotal *prometheus.Desc
	memAvail *prometheus.Desc
	cpuUtil  *prometheus.Desc
	log      *zap.Logger
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector. Sampling failures are logged at debug
// and the affected metric is omitted.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		memTotal: prometheus.NewDesc("dsmr_exporter_host_memory_total_bytes", "Total host memory.", nil, nil),
		memAvail: prometheus.NewDesc("dsmr_exporter_host_memory_available_bytes", "Host memory available for new processes.", nil, nil),
		cpuUtil:  prometheus.NewDesc("dsmr_exporter_host_cpu_utilization_ratio", "Host CPU utilization since the previous scrape, from 0 to 1.", nil, nil),
		log:      log.Named("host"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.memTotal
	ch <- c.memAvail
	ch <- c.cpuUtil
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		ch <- prometheus.MustNewConstMetric(c.memTotal, prometheus.GaugeValue, float64(vm.Total))
		ch <- prometheus.MustNewConstMetric(c.memAvail, prometheus.GaugeValue, float64(vm.Available))
	} else {
		c.log.Debug("memory sample failed", zap.Error(err))
	}
	// Interval 0 compares against the previous call, so Collect never blocks.
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) == 1 {
		ch <- prometheus.MustNewConstMetric(c.cpuUtil, prometheus.GaugeValue, pct[0]/100)
	} else {
		c.log.Debug("cpu sample failed", zap.Error(err))
	}
}
