// Package metrics exports engine events as Prometheus metrics.
//
// A Collector implements symbolic.Observer. Attach it to a pool with
// symbolic.WithObserver:
//
//	reg := prometheus.NewRegistry()
//	p := symbolic.NewPool(4096, symbolic.WithObserver(metrics.NewCollector(reg)))
//
// Metrics:
//   - symbolic_reductions_total{outcome}: reductions by outcome
//   - symbolic_reduction_duration_seconds: reduction latency
//   - symbolic_approximations_total{result}: approximations, "defined" or "undefined"
//   - symbolic_approximation_duration_seconds: approximation latency
//   - symbolic_pool_live_nodes: nodes in use after the last operation
//   - symbolic_pool_capacity_nodes: pool capacity
//   - symbolic_pool_high_water_nodes: largest observed live node count
package metrics
