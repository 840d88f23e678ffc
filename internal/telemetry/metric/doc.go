// Package metric owns the Prometheus registry of an atomstore process.
//
// The registry bundles Go runtime and process collectors, the atom and
// storage adapter counters from pkg/, and HTTP request metrics. It is
// exposed at /metrics by the server.
package metric
