// Package metrics defines and registers the Prometheus metrics sandexec
// exposes, following the common var-block-plus-init-MustRegister shape
// for Prometheus metric registration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sandexec_requests_total",
			Help: "Total number of execution requests accepted",
		},
	)

	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandexec_executions_total",
			Help: "Total number of executions run, by outcome",
		},
		[]string{"outcome"},
	)

	ExecutionWallTimeMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sandexec_execution_wall_time_ms",
			Help:    "Wall-clock time per execution in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 14),
		},
	)

	ExecutionTimeMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sandexec_execution_time_ms",
			Help:    "User+system CPU time per execution in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 14),
		},
	)

	ExecutionMemoryKB = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sandexec_execution_memory_kb",
			Help:    "Peak resident set size per execution in kilobytes",
			Buckets: prometheus.ExponentialBuckets(512, 2, 16),
		},
	)

	SystemMemoryUsedBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sandexec_system_memory_used_bytes",
			Help: "Host memory in use, sampled periodically",
		},
	)

	SystemCPUUsedPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sandexec_system_cpu_used_percent",
			Help: "Host CPU utilization percentage, sampled periodically",
		},
	)

	SystemDiskUsedBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sandexec_system_disk_used_bytes",
			Help: "Scratch filesystem disk usage in bytes, sampled periodically",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ExecutionsTotal)
	prometheus.MustRegister(ExecutionWallTimeMs)
	prometheus.MustRegister(ExecutionTimeMs)
	prometheus.MustRegister(ExecutionMemoryKB)
	prometheus.MustRegister(SystemMemoryUsedBytes)
	prometheus.MustRegister(SystemCPUUsedPercent)
	prometheus.MustRegister(SystemDiskUsedBytes)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
