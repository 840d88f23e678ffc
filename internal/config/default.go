package config

import (
	"time"

	"github.com/yndnr/atomstore/pkg/storage"
)

// Default configuration values.
const (
	DefaultPreset  = storage.Local
	DefaultDataDir = "./data"

	DefaultGCInterval  = 10 * time.Minute
	DefaultGCThreshold = 0.5
	DefaultCacheSize   = 64 << 20 // 64MB

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultServerAddr = "127.0.0.1:7070"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageSection{
			Preset:  string(DefaultPreset),
			DataDir: DefaultDataDir,
			Badger: BadgerSection{
				GCInterval:  DefaultGCInterval,
				GCThreshold: DefaultGCThreshold,
				CacheSize:   DefaultCacheSize,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerSection{
			Addr: DefaultServerAddr,
		},
	}
}
