// Package config defines the atomstore configuration.
//
//   - spec.go: Config struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking of secrets for logging
//   - load.go: layered loading through internal/infra/confloader
package config
