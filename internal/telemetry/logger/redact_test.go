package logger

import (
	"log/slog"
	"testing"
)

func TestRedactSensitive_KeyNames(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.Info("config loaded",
		"passphrase", "correct horse",
		"db_password", "pw",
		"client_secret", "s3cr3t",
		"api_token", "abc",
		"encryption_salt", "0123456789abcdef",
		"key", "theme",
		"empty_secret", "",
	)

	entry := decodeEntry(t, buf)
	for _, k := range []string{"passphrase", "db_password", "client_secret", "api_token", "encryption_salt"} {
		if entry[k] != redactedValue {
			t.Errorf("%s = %v, want redacted", k, entry[k])
		}
	}
	if entry["key"] != "theme" {
		t.Errorf("key = %v, atom keys must not be redacted", entry["key"])
	}
	if entry["empty_secret"] != "" {
		t.Errorf("empty_secret = %v, empty values stay empty", entry["empty_secret"])
	}
}

func TestRedactSensitive_Groups(t *testing.T) {
	a := slog.Group("encryption",
		slog.String("passphrase", "hunter22"),
		slog.String("cipher", "aes-gcm"),
	)

	got := redactSensitive(a).Value.Group()
	if got[0].Value.String() != redactedValue {
		t.Errorf("nested passphrase = %q, want redacted", got[0].Value.String())
	}
	if got[1].Value.String() != "aes-gcm" {
		t.Errorf("nested cipher = %q, want aes-gcm", got[1].Value.String())
	}
}

func TestRedactSensitive_NonString(t *testing.T) {
	a := slog.Int("token_count", 3)
	if got := redactSensitive(a); got.Value.Int64() != 3 {
		t.Errorf("non-string value changed: %v", got)
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "***"},
		{"short", "***"},
		{"12345678", "***"},
		{"correct horse battery", "co...ry"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"passphrase":     true,
		"PASSWORD":       true,
		"refresh_token":  true,
		"Credentials":    true,
		"salt":           true,
		"key":            false,
		"atom":           false,
		"storage.preset": false,
	}
	for key, want := range tests {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}
