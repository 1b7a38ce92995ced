package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/telemetry/logger"
)

// Mode selects the socket role.
type Mode string

const (
	ModePub Mode = "pub"
	ModeSub Mode = "sub"
)

// Default values.
const (
	DefaultSettle        = 500 * time.Millisecond
	DefaultCooldown      = 100 * time.Millisecond
	DefaultFlushInterval = 3 * time.Second
	DefaultOnTruncated   = "skip"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // text, json
}

// CLIConfig is the configuration for one zpipe run.
type CLIConfig struct {
	Mode     Mode    `koanf:"mode" yaml:"mode"`
	Bind     bool    `koanf:"bind" yaml:"bind"`
	Endpoint string  `koanf:"endpoint" yaml:"endpoint"`
	Topic    *string `koanf:"topic" yaml:"topic,omitempty"` // nil: prompt (pub) or all topics (sub)
	File     string  `koanf:"file" yaml:"file,omitempty"`

	// Socket options; nil leaves the transport default.
	Buf *int `koanf:"buf" yaml:"buf,omitempty"`
	HWM *int `koanf:"hwm" yaml:"hwm,omitempty"`

	Transport     string        `koanf:"transport" yaml:"transport,omitempty"`
	Settle        time.Duration `koanf:"settle" yaml:"settle"`
	Cooldown      time.Duration `koanf:"cooldown" yaml:"cooldown"`
	FlushInterval time.Duration `koanf:"flush_interval" yaml:"flush_interval"`
	Rate          float64       `koanf:"rate" yaml:"rate,omitempty"`
	OnTruncated   string        `koanf:"on_truncated" yaml:"on_truncated"`

	Record   string `koanf:"record" yaml:"record,omitempty"`
	Force    bool   `koanf:"force" yaml:"force,omitempty"`
	Progress bool   `koanf:"progress" yaml:"progress,omitempty"`
	History  string `koanf:"history" yaml:"history,omitempty"`

	MetricsAddr string `koanf:"metrics_addr" yaml:"metrics_addr,omitempty"`

	Log LogConfig `koanf:"log" yaml:"log"`
}

// Default returns the default configuration. Mode and Endpoint have no
// default and must be supplied.
func Default() *CLIConfig {
	return &CLIConfig{
		Settle:        DefaultSettle,
		Cooldown:      DefaultCooldown,
		FlushInterval: DefaultFlushInterval,
		OnTruncated:   DefaultOnTruncated,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultsMap returns Default as loader keys.
func DefaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"settle":         d.Settle.String(),
		"cooldown":       d.Cooldown.String(),
		"flush_interval": d.FlushInterval.String(),
		"on_truncated":   d.OnTruncated,
		"log.level":      d.Log.Level,
		"log.format":     d.Log.Format,
	}
}

// TopicSet reports whether a topic was configured, including "".
func (c *CLIConfig) TopicSet() bool {
	return c.Topic != nil
}

// TopicOrEmpty returns the configured topic, or "" when unset.
func (c *CLIConfig) TopicOrEmpty() string {
	if c.Topic == nil {
		return ""
	}
	return *c.Topic
}

// Normalize lower-cases enumerated values.
func (c *CLIConfig) Normalize() {
	c.Mode = Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	c.OnTruncated = strings.ToLower(strings.TrimSpace(c.OnTruncated))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate checks the configuration. It runs before any socket opens.
func (c *CLIConfig) Validate() error {
	switch c.Mode {
	case "":
		return domain.ErrMissingMode
	case ModePub, ModeSub:
	default:
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("mode must be pub or sub, got %q", c.Mode))
	}

	if strings.TrimSpace(c.Endpoint) == "" {
		return domain.ErrMissingEndpoint
	}

	switch c.Transport {
	case "", "libzmq", "zmtp":
	default:
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("transport must be libzmq or zmtp, got %q", c.Transport))
	}

	switch c.OnTruncated {
	case "", "skip", "fail":
	default:
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("on_truncated must be skip or fail, got %q", c.OnTruncated))
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return domain.ErrInvalidConfig.WithDetails(err.Error())
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if c.Buf != nil && *c.Buf < 0 {
		return domain.ErrInvalidConfig.WithDetails("buf must not be negative")
	}
	if c.Rate < 0 {
		return domain.ErrInvalidConfig.WithDetails("rate must not be negative")
	}
	for name, d := range map[string]time.Duration{
		"settle":         c.Settle,
		"cooldown":       c.Cooldown,
		"flush_interval": c.FlushInterval,
	} {
		if d < 0 {
			return domain.ErrInvalidConfig.WithDetails(name + " must not be negative")
		}
	}

	if c.Record != "" && c.Mode != ModeSub {
		return domain.ErrInvalidConfig.WithDetails("record is only valid in sub mode")
	}
	return nil
}
