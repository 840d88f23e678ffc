package config

import (
	"fmt"

	"github.com/yndnr/atomstore/internal/infra/confloader"
)

// Load builds the configuration from defaults, the YAML file at path
// (optional), ATOMSTORE_ environment variables and overrides, in rising
// priority, and verifies the result.
//
// overrides is keyed by dotted path, e.g. "storage.data_dir".
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	l := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := l.Load(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
