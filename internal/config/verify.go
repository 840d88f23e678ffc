package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/atomstore/internal/telemetry/logger"
	"github.com/yndnr/atomstore/pkg/storage"
)

// Minimum secret sizes, matching pkg/storage key derivation.
const (
	minPassphraseLen = 8
	minSaltLen       = 16
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return verifyServer(&cfg.Server)
}

func verifyStorage(cfg *StorageSection) error {
	preset, err := storage.ParsePreset(cfg.Preset)
	if err != nil {
		return fmt.Errorf("storage.preset: %w", err)
	}
	if preset == storage.Local && cfg.DataDir == "" {
		return errors.New("storage.data_dir is required for the localStorage preset")
	}

	if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
		return fmt.Errorf("storage.badger.gc_threshold must be between 0 and 1, got %v", cfg.Badger.GCThreshold)
	}
	if cfg.Badger.GCInterval < 0 {
		return errors.New("storage.badger.gc_interval must not be negative")
	}
	if cfg.Badger.CacheSize < 0 {
		return errors.New("storage.badger.cache_size must not be negative")
	}

	return verifyEncryption(&cfg.Encryption)
}

func verifyEncryption(cfg *EncryptionSection) error {
	switch storage.CipherType(cfg.Cipher) {
	case storage.CipherAuto, storage.CipherAESGCM, storage.CipherChaCha20:
	default:
		return fmt.Errorf("storage.encryption.cipher: unknown cipher %q", cfg.Cipher)
	}

	if !cfg.Enabled() {
		if cfg.Salt != "" {
			return errors.New("storage.encryption.salt is set without a passphrase")
		}
		return nil
	}
	if len(cfg.Passphrase) < minPassphraseLen {
		return fmt.Errorf("storage.encryption.passphrase must be at least %d characters", minPassphraseLen)
	}
	if len(cfg.Salt) < minSaltLen {
		return fmt.Errorf("storage.encryption.salt must be at least %d bytes", minSaltLen)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if cfg.SetRate < 0 {
		return errors.New("server.set_rate must not be negative")
	}
	if cfg.SetBurst < 0 {
		return errors.New("server.set_burst must not be negative")
	}
	if cfg.SetRate > 0 && cfg.SetBurst == 0 {
		return errors.New("server.set_burst must be at least 1 when server.set_rate is set")
	}
	return nil
}
