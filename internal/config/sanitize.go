package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	if sanitized.Storage.Encryption.Passphrase != "" {
		sanitized.Storage.Encryption.Passphrase = maskSecret(sanitized.Storage.Encryption.Passphrase)
	}
	if sanitized.Storage.Encryption.Salt != "" {
		sanitized.Storage.Encryption.Salt = maskSecret(sanitized.Storage.Encryption.Salt)
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
