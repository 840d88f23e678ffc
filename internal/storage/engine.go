package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yndnr/atomstore/internal/config"
	"github.com/yndnr/atomstore/internal/telemetry/metric"
	store "github.com/yndnr/atomstore/pkg/storage"
)

// Engine holds the adapters bound to each storage preset.
type Engine struct {
	preset   store.Preset
	resolver *store.Resolver
	adapters map[store.Preset]store.Adapter

	badger  *store.Badger
	logger  *slog.Logger
	metrics *metric.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics instruments every adapter and registers Badger gauges
// with reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(e *Engine) {
		e.metrics = reg
	}
}

// Open builds the adapters for cfg.
//
// sessionStorage is always available and never encrypted: its values do
// not leave the process. localStorage is backed by Badger
// under cfg.DataDir and is only opened when it is the configured preset,
// so session-only processes never touch the disk.
func Open(cfg config.StorageSection, opts ...Option) (*Engine, error) {
	preset, err := store.ParsePreset(cfg.Preset)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		preset:   preset,
		adapters: make(map[store.Preset]store.Adapter),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.adapters[store.Session] = e.instrument(store.Session, store.NewMemory())

	if preset == store.Local {
		if cfg.DataDir == "" {
			return nil, errors.New("storage: data_dir is required for the localStorage preset")
		}
		b, err := store.OpenBadger(badgerConfig(cfg), e.logger)
		if err != nil {
			return nil, err
		}
		e.badger = b

		if e.metrics != nil {
			if err := b.RegisterMetrics(e.metrics.Registerer(), metric.Namespace); err != nil {
				_ = b.Close()
				return nil, err
			}
		}

		local, err := e.encrypt(b, cfg.Encryption)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		e.adapters[store.Local] = e.instrument(store.Local, local)
	}

	resolverOpts := make([]store.ResolverOption, 0, len(e.adapters))
	for p, a := range e.adapters {
		resolverOpts = append(resolverOpts, store.WithPreset(p, a))
	}
	e.resolver = store.NewResolver(resolverOpts...)

	e.logger.Info("storage opened",
		"preset", preset.String(),
		"data_dir", cfg.DataDir,
		"encrypted", cfg.Encryption.Enabled())

	return e, nil
}

// Resolver returns the resolver bound to the engine's presets.
func (e *Engine) Resolver() *store.Resolver {
	return e.resolver
}

// Preset returns the configured preset.
func (e *Engine) Preset() store.Preset {
	return e.preset
}

// Adapter returns the adapter of the configured preset.
func (e *Engine) Adapter() store.Adapter {
	return e.adapters[e.preset]
}

// Keys lists keys stored under the configured preset.
func (e *Engine) Keys(prefix string) ([]string, error) {
	return store.Keys(e.Adapter(), prefix)
}

// Close closes the Badger database, if one was opened.
func (e *Engine) Close() error {
	if e.badger == nil {
		return nil
	}
	if err := e.badger.Close(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (e *Engine) instrument(p store.Preset, a store.Adapter) store.Adapter {
	if e.metrics != nil {
		a = store.Instrument(a, p.String(), e.metrics.Adapters)
	}
	return a
}

func (e *Engine) encrypt(a store.Adapter, enc config.EncryptionSection) (store.Adapter, error) {
	if !enc.Enabled() {
		return a, nil
	}
	sealed, err := store.NewEncrypted(a, store.EncryptionConfig{
		Passphrase: enc.Passphrase,
		Salt:       []byte(enc.Salt),
		Cipher:     store.CipherType(enc.Cipher),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: encryption: %w", err)
	}
	return sealed, nil
}

func badgerConfig(cfg config.StorageSection) store.BadgerConfig {
	bc := store.DefaultBadgerConfig(cfg.DataDir)
	bc.GCInterval = cfg.Badger.GCInterval
	if cfg.Badger.GCThreshold > 0 {
		bc.GCThreshold = cfg.Badger.GCThreshold
	}
	if cfg.Badger.CacheSize > 0 {
		bc.CacheSize = cfg.Badger.CacheSize
	}
	bc.SyncWrites = cfg.Badger.SyncWrites
	return bc
}
