// Package storage provides the key/value backends atoms persist through.
//
// An Adapter is the two-method capability an atom needs: read the string
// stored under a key (or report that nothing is stored) and write a string
// under a key. Anything satisfying that shape can back an atom.
//
// Built-in backends:
//
//   - Memory: process-scoped sharded map (the Session preset)
//   - Badger: persistent embedded KV store (the Local preset)
//   - Encrypted: AEAD wrapper over any adapter
//   - Instrumented: Prometheus counters over any adapter
//
// Presets are resolved through a Resolver that the host populates; there
// are no package-level backends.
//
//	r := storage.NewResolver(
//	    storage.WithPreset(storage.Local, badgerAdapter),
//	    storage.WithPreset(storage.Session, storage.NewMemory()),
//	)
//	a, err := r.Resolve(storage.Local)
package storage
