// Package handler implements the atomstore HTTP API.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/atoms/{key}        read, seeding with ?initial=<json> when empty
//	PUT  /v1/atoms/{key}        replace the value with the JSON request body
//	POST /v1/atoms/{key}/reset  write the atom's initial value back
//
// Every response uses the Response envelope.
package handler
