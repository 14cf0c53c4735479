package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every ddiconf collector.
var Registry = prometheus.NewRegistry()

var (
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddiconf_reconcile_total",
			Help: "Total number of reconciliations by resource type, operation and outcome.",
		},
		[]string{"resource_type", "operation", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddiconf_reconcile_duration_seconds",
			Help:    "Latency of one reconciliation in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource_type", "operation"},
	)

	remoteRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddiconf_remote_request_total",
			Help: "Total number of platform API requests by method and status class.",
		},
		[]string{"method", "status_class"},
	)

	remoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddiconf_remote_request_duration_seconds",
			Help:    "Latency of platform API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	referenceLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddiconf_reference_lookup_total",
			Help: "Total number of reference resolutions by collection and outcome.",
		},
		[]string{"collection", "outcome"},
	)

	allocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddiconf_allocation_total",
			Help: "Total number of next-available allocation requests by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	Registry.MustRegister(Collectors()...)
}

// Collectors returns all ddiconf metric collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		reconcileTotal,
		reconcileDuration,
		remoteRequestTotal,
		remoteRequestDuration,
		referenceLookupTotal,
		allocationTotal,
	}
}

// WriteTextfile writes the current state of Registry in the text exposition
// format, atomically replacing path.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
