package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/zpipe/internal/infra/confloader"
)

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".zpipe", "config.yaml")
}

// Load builds the configuration from defaults, the config file, ZPIPE_*
// environment variables and flags, in increasing priority. An empty
// path uses DefaultConfigPath and tolerates its absence; an explicit
// path must exist. The result is normalized but not validated.
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	fileOpt := confloader.WithConfigFile(path)
	if path == "" {
		fileOpt = confloader.WithOptionalConfigFile(DefaultConfigPath())
	}

	l := confloader.NewLoader(
		fileOpt,
		confloader.WithDefaults(DefaultsMap()),
		confloader.WithSections("log"),
	)

	cfg := &CLIConfig{}
	if err := l.Load(cfg, flags); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadLogLevel reads only log.level from the config file at path. The
// config watcher uses it to apply level changes to a running process.
func LoadLogLevel(path string) (string, error) {
	l := confloader.NewLoader(confloader.WithConfigFile(path), confloader.WithSections("log"))
	var cfg CLIConfig
	if err := l.Load(&cfg, nil); err != nil {
		return "", err
	}
	return cfg.Log.Level, nil
}
