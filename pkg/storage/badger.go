package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// BadgerConfig contains Badger tuning parameters.
type BadgerConfig struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory (tests, throwaway stores).
	InMemory bool

	// GCInterval is the interval between value log GC runs.
	// Zero disables the background loop.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: false
	SyncWrites bool
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        64 << 20,  // 64MB
		ValueLogFileSize: 256 << 20, // 256MB
	}
}

// Badger is an Adapter over an embedded Badger database.
type Badger struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger
	closed atomic.Bool

	lastGCTime       atomic.Int64  // Unix milliseconds
	gcBytesReclaimed atomic.Uint64 // approximate

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// OpenBadger opens (or creates) a Badger-backed adapter.
func OpenBadger(cfg BadgerConfig, logger *slog.Logger) (*Badger, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	b := &Badger{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		go b.gcLoop()
	} else {
		close(b.doneCh)
	}

	logger.Info("badger adapter opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)

	return b, nil
}

// GetItem returns the value stored under key.
func (b *Badger) GetItem(key string) (string, bool, error) {
	if b.closed.Load() {
		return "", false, ErrClosed
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger: get %q: %w", key, err)
	}

	return string(value), true, nil
}

// SetItem stores value under key.
func (b *Badger) SetItem(key, value string) error {
	if b.closed.Load() {
		return ErrClosed
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badger: set %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (b *Badger) RemoveItem(key string) error {
	if b.closed.Load() {
		return ErrClosed
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger: delete %q: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys with the given prefix, in key order.
func (b *Badger) Keys(prefix string) ([]string, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	keys := make([]string, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: scan %q: %w", prefix, err)
	}
	return keys, nil
}

// BadgerStats contains storage statistics.
type BadgerStats struct {
	LSMSize          uint64
	ValueLogSize     uint64
	LastGCTime       int64 // Unix milliseconds, 0 if never run
	GCBytesReclaimed uint64
}

// Stats returns storage statistics.
func (b *Badger) Stats() BadgerStats {
	lsm, vlog := b.db.Size()
	return BadgerStats{
		LSMSize:          uint64(lsm),
		ValueLogSize:     uint64(vlog),
		LastGCTime:       b.lastGCTime.Load(),
		GCBytesReclaimed: b.gcBytesReclaimed.Load(),
	}
}

// GC runs value log garbage collection until nothing more can be rewritten.
// Returns an approximate number of bytes reclaimed.
func (b *Badger) GC() (uint64, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}
	if b.cfg.InMemory {
		return 0, nil
	}

	start := time.Now()
	var reclaimed uint64
	for {
		err := b.db.RunValueLogGC(b.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return reclaimed, fmt.Errorf("badger: gc: %w", err)
		}
		// Badger does not report bytes; count one value log file per pass.
		reclaimed += uint64(b.cfg.ValueLogFileSize)
	}

	b.lastGCTime.Store(time.Now().UnixMilli())
	b.gcBytesReclaimed.Add(reclaimed)

	b.logger.Debug("badger gc completed",
		"bytes_reclaimed", reclaimed,
		"elapsed", time.Since(start))

	return reclaimed, nil
}

// Close stops background work and closes the database.
func (b *Badger) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		close(b.stopCh)
		<-b.doneCh

		if cerr := b.db.Close(); cerr != nil {
			err = fmt.Errorf("badger: close db: %w", cerr)
			return
		}
		b.logger.Info("badger adapter closed")
	})
	return err
}

// RegisterMetrics registers Badger size and GC metrics with reg.
// Values are computed at scrape time.
func (b *Badger) RegisterMetrics(reg prometheus.Registerer, namespace string) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 { return float64(b.Stats().LSMSize) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 { return float64(b.Stats().ValueLogSize) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last Badger GC run",
		}, func() float64 { return float64(b.lastGCTime.Load()) / 1000.0 }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "badger",
			Name:      "gc_bytes_reclaimed_total",
			Help:      "Approximate bytes reclaimed by Badger garbage collection",
		}, func() float64 { return float64(b.gcBytesReclaimed.Load()) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("badger: register metrics: %w", err)
		}
	}
	return nil
}

// gcLoop runs periodic garbage collection.
func (b *Badger) gcLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := b.GC(); err != nil && !errors.Is(err, ErrClosed) {
				b.logger.Error("badger auto gc failed", "error", err)
			}
		case <-b.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
// Badger's info output is routine, so it is logged at debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
