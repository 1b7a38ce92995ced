// Package config defines the zpipe configuration.
//
//   - spec.go: CLIConfig, defaults and validation
//   - loader.go: layered loading (defaults < ~/.zpipe/config.yaml < ZPIPE_* < flags)
//
// Every flag has a config key of the same name with dashes replaced by
// underscores; logging settings live under "log".
package config
