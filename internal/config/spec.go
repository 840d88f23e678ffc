package config

import "time"

// Config is the root configuration for atomctl.
type Config struct {
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
	Server  ServerSection  `koanf:"server"`
}

// StorageSection selects and tunes the storage backend.
type StorageSection struct {
	// Preset is the storage preset atoms resolve to:
	// "localStorage" (persistent, Badger) or "sessionStorage" (in-memory).
	Preset string `koanf:"preset"`

	// DataDir is the Badger directory used by the localStorage preset.
	DataDir string `koanf:"data_dir"`

	Badger     BadgerSection     `koanf:"badger"`
	Encryption EncryptionSection `koanf:"encryption"`
}

// BadgerSection tunes the Badger database.
type BadgerSection struct {
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCThreshold float64       `koanf:"gc_threshold"`
	CacheSize   int64         `koanf:"cache_size"`
	SyncWrites  bool          `koanf:"sync_writes"`
}

// EncryptionSection enables encryption of stored values. Encryption is
// on when Passphrase is set.
type EncryptionSection struct {
	Passphrase string `koanf:"passphrase"`
	Salt       string `koanf:"salt"`
	Cipher     string `koanf:"cipher"`
}

// Enabled reports whether stored values are encrypted.
func (e EncryptionSection) Enabled() bool {
	return e.Passphrase != ""
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerSection configures the HTTP API served by "atomctl serve".
type ServerSection struct {
	Addr string `koanf:"addr"`

	// SetRate limits writes per second across all atoms; 0 disables the limit.
	SetRate float64 `koanf:"set_rate"`

	// SetBurst is the number of writes allowed above SetRate at once.
	SetBurst int `koanf:"set_burst"`
}
