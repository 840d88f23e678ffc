package logger

import (
	"log/slog"
	"strings"
)

// Attribute keys containing any of these are redacted. "key" is absent on
// purpose: atom keys are logged everywhere and are not secret.
var sensitiveKeyPatterns = []string{
	"passphrase",
	"password",
	"secret",
	"token",
	"credential",
	"salt",
}

const redactedValue = "***REDACTED***"

// redactSensitive replaces non-empty string values of sensitive keys.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			redacted[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}
	return a
}

// RedactString masks all but the first and last two characters of value.
// Use it for secrets logged under a key that is not recognised as sensitive.
func RedactString(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:2] + "..." + value[len(value)-2:]
}

// IsSensitiveKey reports whether an attribute key suggests secret content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
