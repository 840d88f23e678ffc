package storage

import "errors"

// Common errors.
var (
	ErrClosed        = errors.New("storage: adapter closed")
	ErrNilAdapter    = errors.New("storage: nil adapter")
	ErrUnknownPreset = errors.New("storage: unknown preset")
	ErrNotSupported  = errors.New("storage: operation not supported by adapter")
)

// Adapter is a string key/value backend.
//
// GetItem reports ok=false when nothing is stored under key; err is
// reserved for backend failures.
type Adapter interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
}

// Remover is implemented by adapters that can delete a key.
type Remover interface {
	RemoveItem(key string) error
}

// Lister is implemented by adapters that can enumerate their keys.
type Lister interface {
	// Keys returns the stored keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// AdapterFuncs builds an Adapter from two closures.
type AdapterFuncs struct {
	Get func(key string) (string, bool, error)
	Set func(key, value string) error
}

// GetItem calls f.Get.
func (f AdapterFuncs) GetItem(key string) (string, bool, error) {
	return f.Get(key)
}

// SetItem calls f.Set.
func (f AdapterFuncs) SetItem(key, value string) error {
	return f.Set(key, value)
}

// Remove deletes key from a when a implements Remover.
func Remove(a Adapter, key string) error {
	r, ok := a.(Remover)
	if !ok {
		return ErrNotSupported
	}
	return r.RemoveItem(key)
}

// Keys lists keys of a when a implements Lister.
func Keys(a Adapter, prefix string) ([]string, error) {
	l, ok := a.(Lister)
	if !ok {
		return nil, ErrNotSupported
	}
	return l.Keys(prefix)
}
