// Package buildinfo reports the version of the running binary.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/atomstore/internal/infra/buildinfo.Version=v0.3.0"
//
// Without ldflags, the Go version and VCS revision recorded by the
// toolchain are used.
package buildinfo
