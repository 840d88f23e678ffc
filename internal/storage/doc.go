// Package storage wires the storage presets of an atomstore process.
//
// The engine owns the host side of preset resolution: it opens the
// Badger database behind localStorage, creates the in-memory map behind
// sessionStorage, applies encryption and instrumentation, and exposes a
// pkg/storage Resolver bound to both. Atoms never reach a backend except
// through that resolver.
package storage
