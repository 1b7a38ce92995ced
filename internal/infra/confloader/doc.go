// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (ZPIPE_*)
//  3. YAML configuration file
//  4. Defaults (WithDefaults)
//
// Watcher reports writes to the configuration file so a running
// process can pick up settings that are safe to change live.
package confloader
