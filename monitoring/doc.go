// Package monitoring holds the Prometheus collectors and OpenTelemetry
// tracer used around reconciliations and remote calls.
//
// Collectors live on a dedicated Registry so a one-shot CLI run can flush
// them to a node-exporter textfile with WriteTextfile.
package monitoring
