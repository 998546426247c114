package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zephyrtronium/symbolic"
)

func TestCollectorReductions(t *testing.T) {
	reg := prometheus.NewRegistry()
	col := NewCollector(reg)
	cases := []struct {
		name    string
		outcome symbolic.Outcome
		want    float64
	}{
		{"changed", symbolic.OutcomeChanged, 1},
		{"changed-again", symbolic.OutcomeChanged, 2},
		{"unchanged", symbolic.OutcomeUnchanged, 1},
		{"interrupted", symbolic.OutcomeInterrupted, 1},
		{"exhausted", symbolic.OutcomeExhausted, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			col.ObserveReduction(c.outcome, time.Millisecond)
			got := testutil.ToFloat64(col.reductions.WithLabelValues(c.outcome.String()))
			if got != c.want {
				t.Errorf("wrong count: want %v, got %v", c.want, got)
			}
		})
	}
	if n := testutil.CollectAndCount(col.reductionDuration); n != 1 {
		t.Errorf("wrong number of duration series: %d", n)
	}
}

func TestCollectorApproximations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveApproximation(false, time.Microsecond)
	c.ObserveApproximation(true, time.Microsecond)
	c.ObserveApproximation(true, time.Microsecond)
	want := `
# HELP symbolic_approximations_total Total number of approximations by result.
# TYPE symbolic_approximations_total counter
symbolic_approximations_total{result="defined"} 1
symbolic_approximations_total{result="undefined"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "symbolic_approximations_total"); err != nil {
		t.Error(err)
	}
}

func TestCollectorPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObservePool(10, 100)
	c.ObservePool(40, 100)
	c.ObservePool(5, 100)
	got := map[string]float64{
		"live":      testutil.ToFloat64(c.live),
		"capacity":  testutil.ToFloat64(c.capacity),
		"highWater": testutil.ToFloat64(c.highWater),
	}
	want := map[string]float64{"live": 5, "capacity": 100, "highWater": 40}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong gauges (-want +got):\n%s", diff)
	}
}

func TestCollectorZeroSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	want := []string{
		"symbolic_approximation_duration_seconds",
		"symbolic_approximations_total",
		"symbolic_pool_capacity_nodes",
		"symbolic_pool_high_water_nodes",
		"symbolic_pool_live_nodes",
		"symbolic_reduction_duration_seconds",
		"symbolic_reductions_total",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("wrong metric families (-want +got):\n%s", diff)
	}
}

func TestCollectorObservesPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	p := symbolic.NewPool(256, symbolic.WithObserver(c))
	e, err := symbolic.ParseString(p, "2+3x+x")
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()
	rc := symbolic.NewReductionContext(nil, symbolic.Real, symbolic.Radian, symbolic.User, true)
	if _, err := e.Simplify(context.Background(), rc); err != nil {
		t.Fatal(err)
	}
	if n := testutil.ToFloat64(c.reductions.WithLabelValues("changed")); n < 1 {
		t.Errorf("no changed reductions recorded")
	}
	if n := testutil.ToFloat64(c.capacity); n != 256 {
		t.Errorf("wrong capacity: want 256, got %v", n)
	}
}
