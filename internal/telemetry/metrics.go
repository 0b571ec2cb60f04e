package telemetry

import (
	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MakeMetrics registers a request counter and a latency histogram, both
// labelled by method and outcome, on a fresh registry.
func MakeMetrics(namespace, subsystem string) (metrics.Counter, metrics.Histogram, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	labels := []string{"method", "outcome"}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests sent to the experiment service.",
	}, labels)
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_seconds",
		Help:      "Latency of requests sent to the experiment service.",
		Buckets:   prometheus.DefBuckets,
	}, labels)
	reg.MustRegister(cv, hv)

	return kitprometheus.NewCounter(cv), kitprometheus.NewHistogram(hv), reg
}
