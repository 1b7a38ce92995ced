// Package buildinfo exposes zpipe version information injected via
// ldflags, falling back to the module build info embedded by the Go
// toolchain:
//
//	go build -ldflags "-X github.com/yndnr/zpipe/internal/infra/buildinfo.Version=v0.3.0"
package buildinfo
