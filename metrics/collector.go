package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/zephyrtronium/symbolic"
)

const namespace = "symbolic"

// Collector records engine events. It is safe for concurrent use, so one
// Collector may observe several pools.
type Collector struct {
	reductions        *prometheus.CounterVec
	reductionDuration prometheus.Histogram

	approximations        *prometheus.CounterVec
	approximationDuration prometheus.Histogram

	live      prometheus.Gauge
	capacity  prometheus.Gauge
	highWater prometheus.Gauge
}

var _ symbolic.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics with reg. If reg
// is nil, the default registerer is used. Panics if the metrics are already
// registered.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		reductions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reductions_total",
				Help:      "Total number of reductions by outcome.",
			},
			[]string{"outcome"},
		),
		reductionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reduction_duration_seconds",
				Help:      "Duration of reductions in seconds.",
				// 10µs to about 10s
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 11),
			},
		),
		approximations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approximations_total",
				Help:      "Total number of approximations by result.",
			},
			[]string{"result"},
		),
		approximationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "approximation_duration_seconds",
				Help:      "Duration of approximations in seconds.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 11),
			},
		),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_live_nodes",
			Help:      "Nodes in use after the last engine operation.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_capacity_nodes",
			Help:      "Capacity of the observed pool in nodes.",
		}),
		highWater: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_high_water_nodes",
			Help:      "Largest observed number of nodes in use.",
		}),
	}
	// Pre-create each outcome so that zero counts are exported.
	for _, o := range []symbolic.Outcome{symbolic.OutcomeChanged, symbolic.OutcomeUnchanged, symbolic.OutcomeInterrupted, symbolic.OutcomeExhausted} {
		c.reductions.WithLabelValues(o.String())
	}
	c.approximations.WithLabelValues("defined")
	c.approximations.WithLabelValues("undefined")

	reg.MustRegister(
		c.reductions,
		c.reductionDuration,
		c.approximations,
		c.approximationDuration,
		c.live,
		c.capacity,
		c.highWater,
	)
	return c
}

// ObserveReduction records one reduction.
func (c *Collector) ObserveReduction(outcome symbolic.Outcome, elapsed time.Duration) {
	c.reductions.WithLabelValues(outcome.String()).Inc()
	c.reductionDuration.Observe(elapsed.Seconds())
}

// ObserveApproximation records one approximation.
func (c *Collector) ObserveApproximation(undefined bool, elapsed time.Duration) {
	r := "defined"
	if undefined {
		r = "undefined"
	}
	c.approximations.WithLabelValues(r).Inc()
	c.approximationDuration.Observe(elapsed.Seconds())
}

// ObservePool records pool occupancy.
func (c *Collector) ObservePool(live, capacity int) {
	c.live.Set(float64(live))
	c.capacity.Set(float64(capacity))
	// Gauges have no atomic max; a lost race only delays the update.
	if m := float64(live); m > readGauge(c.highWater) {
		c.highWater.Set(m)
	}
}

// readGauge returns the current value of g.
func readGauge(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
