// Package output renders command results for zpipe.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: column-aligned tables for the terminal
//   - json.go, yaml.go: machine-readable output
//   - progress.go: replay progress bar on stderr
package output
