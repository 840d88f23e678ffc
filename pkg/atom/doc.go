// Package atom provides persisted, observable single-value containers.
//
// An Atom wraps one key of a storage.Adapter. Every Get reads through the
// adapter, decodes the stored string with the atom's codec and runs the
// "get" middleware; every Set runs the "set" middleware, encodes, writes and
// then notifies subscribers with the final value. An empty key is seeded
// with the atom's initial value on first read.
//
// Middleware is applied in registration order, each registration receiving
// the previous one's output. A callback either transforms the value
// synchronously or returns Deferred, in which case the value passes through
// unchanged and any work the callback started continues on its own. A
// callback that returns an error aborts a Set before anything is written.
//
//	counter, err := atom.New(atom.Options[int]{
//	    Key:     "counter",
//	    Initial: 0,
//	    Storage: storage.NewMemory(),
//	})
//	unsubscribe := counter.Subscribe(func(v int) { fmt.Println(v) })
//	counter.Update(func(v int) int { return v + 1 })
//	unsubscribe()
//
// Atoms hold no value in memory and take no lock around the store: two
// atoms on the same key and adapter share one slot, and the last write wins.
package atom
