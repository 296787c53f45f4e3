package metric

import "github.com/prometheus/client_golang/prometheus"

// AuthState reports whether a session is currently open.
type AuthState interface {
	IsAuthenticated() bool
}

// Collector reports the live authentication state as a gauge.
type Collector struct {
	state AuthState
	desc  *prometheus.Desc
}

// NewCollector creates a collector reading state on every scrape.
func NewCollector(state AuthState) *Collector {
	return &Collector{
		state: state,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 when a bearer token is stored, 0 otherwise.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	v := 0.0
	if c.state.IsAuthenticated() {
		v = 1
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, v)
}
