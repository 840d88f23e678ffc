package atom

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/atomstore/pkg/atom/codec"
	"github.com/yndnr/atomstore/pkg/storage"
)

// Options configures a new Atom.
type Options[T any] struct {
	// Key identifies the atom's slot in Storage. Required.
	Key string

	// Initial seeds an empty slot and is restored by Reset.
	Initial T

	// Storage is the adapter values persist through. Required.
	Storage storage.Adapter

	// Codec converts values to stored strings. Default: codec.JSON.
	Codec codec.Codec[T]

	// Middleware is registered in order before the seeding read.
	Middleware []Middleware[T]

	// Logger receives debug output. Default: slog.Default().
	Logger *slog.Logger

	// Metrics, when set, counts atom operations.
	Metrics *Metrics
}

// Atom is a persisted value with a middleware pipeline and subscribers.
type Atom[T any] struct {
	key     string
	initial T
	store   storage.Adapter
	codec   codec.Codec[T]
	logger  *slog.Logger
	metrics *Metrics

	// Both slices are replaced, never mutated in place, so a pipeline run
	// can iterate the slice it loaded while registrations change.
	mu          sync.Mutex
	middleware  []Registration[T]
	subscribers []subscriber[T]
}

type subscriber[T any] struct {
	id string
	fn func(T)
}

// New creates an atom and performs its first read, seeding the slot with
// the initial value when nothing is stored.
func New[T any](opts Options[T]) (*Atom[T], error) {
	if opts.Key == "" {
		return nil, ErrEmptyKey
	}
	if opts.Storage == nil {
		return nil, ErrNoStorage.with(opts.Key, "", nil)
	}
	if opts.Codec == nil {
		opts.Codec = codec.JSON[T]()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &Atom[T]{
		key:     opts.Key,
		initial: opts.Initial,
		store:   opts.Storage,
		codec:   opts.Codec,
		logger:  opts.Logger.With("atom", opts.Key),
		metrics: opts.Metrics,
	}

	for _, m := range opts.Middleware {
		a.middleware = append(a.middleware, m.registration())
	}

	if _, err := a.Get(); err != nil {
		return nil, err
	}

	return a, nil
}

// NewFromTarget resolves target through r and creates an atom on the
// resulting adapter. opts.Storage is ignored.
func NewFromTarget[T any](r *storage.Resolver, target storage.Target, opts Options[T]) (*Atom[T], error) {
	adapter, err := r.Resolve(target)
	if err != nil {
		return nil, ErrNoStorage.with(opts.Key, "", err)
	}
	opts.Storage = adapter
	return New(opts)
}

// Key returns the atom's storage key.
func (a *Atom[T]) Key() string {
	return a.key
}

// Get reads the stored value and runs it through the "get" middleware.
//
// When nothing is stored, the initial value is run through the "get"
// middleware and written with the Set path; the value written is returned.
func (a *Atom[T]) Get() (T, error) {
	var zero T

	raw, ok, err := a.store.GetItem(a.key)
	if err != nil {
		a.metrics.failed(a.key, OpGet)
		return zero, ErrStorage.with(a.key, "read", err)
	}
	if !ok {
		return a.seed()
	}

	value, err := a.codec.Decode(raw)
	if err != nil {
		a.metrics.failed(a.key, OpGet)
		return zero, ErrDecode.with(a.key, "", err)
	}

	value, err = a.run(value, OpGet)
	if err != nil {
		a.metrics.failed(a.key, OpGet)
		return zero, err
	}

	a.metrics.got(a.key)
	return value, nil
}

// Set resolves u, runs the "set" middleware, writes the result and
// notifies subscribers. It returns the value written.
func (a *Atom[T]) Set(u Update[T]) (T, error) {
	next, err := u.resolve(a.Get)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.write(next)
}

// Update sets the value derived by fn from the current value.
func (a *Atom[T]) Update(fn func(T) T) (T, error) {
	return a.Set(Derive(fn))
}

// Reset writes the initial value back through the Set path.
func (a *Atom[T]) Reset() (T, error) {
	return a.Set(Value(a.initial))
}

// AddMiddleware appends m to the pipeline. It affects later operations
// only; stored data is not reprocessed.
func (a *Atom[T]) AddMiddleware(m Middleware[T]) {
	reg := m.registration()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.middleware = append(slices.Clip(a.middleware), reg)
}

// Subscribe registers fn to receive the value written by every successful
// Set, Update, Reset or seeding read. The returned function removes this
// subscriber; calling it more than once is harmless.
func (a *Atom[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	id := ulid.Make().String()

	a.mu.Lock()
	a.subscribers = append(slices.Clip(a.subscribers), subscriber[T]{id: id, fn: fn})
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.subscribers = slices.DeleteFunc(slices.Clone(a.subscribers), func(s subscriber[T]) bool {
			return s.id == id
		})
	}
}

// seed writes the initial value into an empty slot.
func (a *Atom[T]) seed() (T, error) {
	value, err := a.run(a.initial, OpGet)
	if err != nil {
		var zero T
		a.metrics.failed(a.key, OpGet)
		return zero, err
	}

	value, err = a.write(value)
	if err != nil {
		var zero T
		return zero, err
	}

	a.metrics.seeded(a.key)
	a.logger.Debug("atom seeded")
	return value, nil
}

// write is the Set path for an already resolved value.
func (a *Atom[T]) write(value T) (T, error) {
	var zero T

	value, err := a.run(value, OpSet)
	if err != nil {
		a.metrics.rejected(a.key)
		a.logger.Debug("atom set rejected", "error", err)
		return zero, err
	}

	raw, err := a.codec.Encode(value)
	if err != nil {
		a.metrics.failed(a.key, OpSet)
		return zero, ErrEncode.with(a.key, "", err)
	}

	if err := a.store.SetItem(a.key, raw); err != nil {
		a.metrics.failed(a.key, OpSet)
		return zero, ErrStorage.with(a.key, "write", err)
	}

	a.metrics.set(a.key)
	a.notify(value)
	return value, nil
}

// run passes value through every registration that applies to op.
func (a *Atom[T]) run(value T, op Operation) (T, error) {
	a.mu.Lock()
	pipeline := a.middleware
	a.mu.Unlock()

	for _, reg := range pipeline {
		if reg.Callback == nil || !reg.Applies(op) {
			continue
		}

		result, err := reg.Callback(value, op)
		if err != nil {
			var zero T
			return zero, ErrMiddleware.with(a.key, describe(reg.Label, op), err)
		}
		if !result.IsDeferred() {
			value = result.value
		}
	}

	return value, nil
}

// notify calls every current subscriber with value, in subscription order.
func (a *Atom[T]) notify(value T) {
	a.mu.Lock()
	subs := a.subscribers
	a.mu.Unlock()

	for _, s := range subs {
		s.fn(value)
	}
	a.metrics.notified(a.key, len(subs))
}

func describe(label string, op Operation) string {
	if label == "" {
		return fmt.Sprintf("on %s", op)
	}
	return fmt.Sprintf("%s on %s", label, op)
}
