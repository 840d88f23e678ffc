// Package httpserver serves the atomstore HTTP API behind "atomctl serve".
//
// The router wraps the handler package with request IDs, panic recovery
// and per-request logging and metrics, and mounts /metrics next to it.
package httpserver
