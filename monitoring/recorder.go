package monitoring

import (
	"strconv"
	"time"
)

// RecordReconcile records the outcome and duration of one reconciliation.
// result is one of applied, unchanged or failed.
func RecordReconcile(resourceType, operation, result string, duration time.Duration) {
	reconcileTotal.WithLabelValues(resourceType, operation, result).Inc()
	reconcileDuration.WithLabelValues(resourceType, operation).Observe(duration.Seconds())
}

// RecordRemoteRequest records one platform API call. A transport failure is
// counted under the `error` status class.
func RecordRemoteRequest(method string, statusCode int, err error, duration time.Duration) {
	remoteRequestTotal.WithLabelValues(method, StatusClass(statusCode, err)).Inc()
	remoteRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordReferenceLookup(collection, outcome string) {
	referenceLookupTotal.WithLabelValues(collection, outcome).Inc()
}

func RecordAllocation(kind string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	allocationTotal.WithLabelValues(kind, result).Inc()
}

// StatusClass maps an HTTP status to `2xx`, `4xx`, ... or `error`.
func StatusClass(statusCode int, err error) string {
	if err != nil || statusCode < 100 {
		return "error"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}
