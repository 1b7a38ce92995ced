package metric

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Progress is a source whose read position can be sampled.
// recordlog.Log satisfies it.
type Progress interface {
	Offset() int64
	Limit() int64
}

// Collector reports the offset and limit of the log currently being
// replayed. Values are sampled at scrape time.
type Collector struct {
	mu  sync.Mutex
	src Progress

	offsetDesc *prometheus.Desc
	limitDesc  *prometheus.Desc
}

// NewCollector creates a collector with nothing tracked.
func NewCollector() *Collector {
	return &Collector{
		offsetDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "replay", "offset_bytes"),
			"Current byte offset within the replayed log.",
			nil, nil),
		limitDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "replay", "limit_bytes"),
			"Byte offset at which the replayed log ends, -1 if unknown.",
			nil, nil),
	}
}

// Track starts sampling p. Passing nil stops tracking.
func (c *Collector) Track(p Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.src = p
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.offsetDesc
	ch <- c.limitDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	src := c.src
	c.mu.Unlock()

	if src == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.offsetDesc, prometheus.GaugeValue, float64(src.Offset()))
	ch <- prometheus.MustNewConstMetric(c.limitDesc, prometheus.GaugeValue, float64(src.Limit()))
}
